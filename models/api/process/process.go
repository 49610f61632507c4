package processapimodels

import (
	"jml-lite/models"
	apimodels "jml-lite/models/api"
	taskapimodels "jml-lite/models/api/task"
	"time"
)

type ProcessView struct {
	ID               uint                 `json:"id"`
	ProcessType      models.ProcessType   `json:"process_type"`
	EmployeeName     string               `json:"employee_name"`
	EmployeeID       string               `json:"employee_id"`
	EmployeeEmail    string               `json:"employee_email"`
	JobTitle         string               `json:"job_title"`
	Department       string               `json:"department"`
	TargetDepartment string               `json:"target_department,omitempty"`
	ManagerName      string               `json:"manager_name"`
	EffectiveDate    *time.Time           `json:"effective_date,omitempty"`
	Status           models.ProcessStatus `json:"status"`
	Progress         int                  `json:"progress"`
	CreatedAt        time.Time            `json:"created_at"`
}

// ProcessSubmission данные мастера создания процесса
type ProcessSubmission struct {
	EmployeeName     string                     `json:"employee_name" validate:"required"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeEmail    string                     `json:"employee_email" validate:"omitempty,email"`
	JobTitle         string                     `json:"job_title"`
	Department       string                     `json:"department"`
	TargetDepartment string                     `json:"target_department"`
	ManagerID        *uint                      `json:"manager_id"`
	ManagerName      string                     `json:"manager_name"`
	ManagerEmail     string                     `json:"manager_email" validate:"omitempty,email"`
	EffectiveDate    *time.Time                 `json:"effective_date"`
	Tasks            []taskapimodels.TaskConfig `json:"tasks" validate:"dive"`
}

func (s ProcessSubmission) Validate() error {
	return apimodels.ValidateStruct(s)
}
