package dbmodels

import directoryapimodels "jml-lite/models/api/directory"

// DirectoryUser справочник сотрудников, по нему разрешаются id в имя и почту
type DirectoryUser struct {
	BaseModel
	DisplayName string `gorm:"type:varchar(255)"`
	Email       string `gorm:"type:varchar(255);index"`
	JobTitle    string `gorm:"type:varchar(255)"`
	Department  string `gorm:"type:varchar(255)"`
	IsActive    bool   `gorm:"default:true"`
}

func (r DirectoryUser) ToModelView() directoryapimodels.UserView {
	return directoryapimodels.UserView{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		JobTitle:    r.JobTitle,
		Department:  r.Department,
	}
}
