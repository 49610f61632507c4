package dbmodels

import (
	"jml-lite/models"
	processapimodels "jml-lite/models/api/process"
	"time"
)

// JmlProcess карточка онбординга, перевода или увольнения сотрудника
type JmlProcess struct {
	BaseModel
	EmployeeName     string `gorm:"type:varchar(255)"`
	EmployeeID       string `gorm:"type:varchar(50);index"`
	EmployeeEmail    string `gorm:"type:varchar(255)"`
	JobTitle         string `gorm:"type:varchar(255)"`
	Department       string `gorm:"type:varchar(255)"`
	TargetDepartment string `gorm:"type:varchar(255)"`
	ManagerID        *uint
	ManagerName      string `gorm:"type:varchar(255)"`
	ManagerEmail     string `gorm:"type:varchar(255)"`
	EffectiveDate    *time.Time
	Status           models.ProcessStatus `gorm:"type:varchar(50);index"`
	Progress         int
	CreatedByID      uint
	CreatedByName    string `gorm:"type:varchar(255)"`
}

func (r JmlProcess) ToModelView(kind models.ProcessType) processapimodels.ProcessView {
	return processapimodels.ProcessView{
		ID:               r.ID,
		ProcessType:      kind,
		EmployeeName:     r.EmployeeName,
		EmployeeID:       r.EmployeeID,
		EmployeeEmail:    r.EmployeeEmail,
		JobTitle:         r.JobTitle,
		Department:       r.Department,
		TargetDepartment: r.TargetDepartment,
		ManagerName:      r.ManagerName,
		EffectiveDate:    r.EffectiveDate,
		Status:           r.Status,
		Progress:         r.Progress,
		CreatedAt:        r.CreatedAt,
	}
}

func ProcessTableName(kind models.ProcessType) string {
	switch kind {
	case models.ProcessMover:
		return "movers"
	case models.ProcessOffboarding:
		return "offboardings"
	}
	return "onboardings"
}
