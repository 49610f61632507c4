package directoryapimodels

type UserView struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	JobTitle    string `json:"job_title"`
	Department  string `json:"department"`
}
