package workflowapimodels

import (
	"jml-lite/models"
	apimodels "jml-lite/models/api"
)

// SystemAccessRequest запрос доступа к системам для сотрудника процесса
type SystemAccessRequest struct {
	ProcessType   models.ProcessType      `json:"process_type" validate:"required,oneof=Onboarding Mover Offboarding"`
	ProcessID     uint                    `json:"process_id" validate:"required"`
	EmployeeName  string                  `json:"employee_name" validate:"required"`
	Systems       []string                `json:"systems" validate:"required,min=1"`
	ApproverID    uint                    `json:"approver_id" validate:"required"`
	Justification string                  `json:"justification"`
	Priority      models.ApprovalPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
}

func (r SystemAccessRequest) Validate() error {
	return apimodels.ValidateStruct(r)
}

// EquipmentRequest запрос на выдачу оборудования
type EquipmentRequest struct {
	ProcessType   models.ProcessType      `json:"process_type" validate:"required,oneof=Onboarding Mover Offboarding"`
	ProcessID     uint                    `json:"process_id" validate:"required"`
	EmployeeName  string                  `json:"employee_name" validate:"required"`
	Items         []string                `json:"items" validate:"required,min=1"`
	ApproverID    uint                    `json:"approver_id" validate:"required"`
	Justification string                  `json:"justification"`
	Priority      models.ApprovalPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
}

func (r EquipmentRequest) Validate() error {
	return apimodels.ValidateStruct(r)
}
