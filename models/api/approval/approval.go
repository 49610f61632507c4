package approvalapimodels

import (
	"jml-lite/models"
	apimodels "jml-lite/models/api"
	"time"

	"github.com/pkg/errors"
)

type ApprovalView struct {
	ID               uint                    `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description,omitempty"`
	ApprovalType     models.ApprovalType     `json:"approval_type"`
	Status           models.ApprovalStatus   `json:"status"`
	Priority         models.ApprovalPriority `json:"priority"`
	RelatedItemID    uint                    `json:"related_item_id"`
	RelatedItemType  models.RelatedItemType  `json:"related_item_type"`
	RequestedByID    uint                    `json:"requested_by_id"`
	RequestedByName  string                  `json:"requested_by_name"`
	RequestedByEmail string                  `json:"requested_by_email"`
	RequestedDate    time.Time               `json:"requested_date"`
	ApproverID       uint                    `json:"approver_id"`
	ApproverName     string                  `json:"approver_name"`
	ApproverEmail    string                  `json:"approver_email"`
	DecisionByName   string                  `json:"decision_by_name,omitempty"`
	DecisionDate     *time.Time              `json:"decision_date,omitempty"`
	Comments         string                  `json:"comments,omitempty"`
	RejectionReason  string                  `json:"rejection_reason,omitempty"`
	DelegatedToName  string                  `json:"delegated_to_name,omitempty"`
	DelegatedDate    *time.Time              `json:"delegated_date,omitempty"`
	DueDate          *time.Time              `json:"due_date,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ApprovalRequest создание запроса на согласование
type ApprovalRequest struct {
	Title            string                  `json:"title" validate:"required"`
	Description      string                  `json:"description"`
	ApprovalType     models.ApprovalType     `json:"approval_type" validate:"required,oneof=Onboarding Mover Offboarding SystemAccess Equipment Training"`
	Priority         models.ApprovalPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
	RelatedItemID    uint                    `json:"related_item_id"`
	RelatedItemType  models.RelatedItemType  `json:"related_item_type" validate:"omitempty,oneof=Onboarding Mover Offboarding Task"`
	RequestedByID    uint                    `json:"requested_by_id"`
	RequestedByName  string                  `json:"requested_by_name"`
	RequestedByEmail string                  `json:"requested_by_email"`
	ApproverID       uint                    `json:"approver_id" validate:"required"`
	ApproverName     string                  `json:"approver_name"`
	ApproverEmail    string                  `json:"approver_email" validate:"omitempty,email"`
	DueDate          *time.Time              `json:"due_date"`
}

func (r ApprovalRequest) Validate() error {
	return apimodels.ValidateStruct(r)
}

// ApprovalAction единая точка перехода статуса согласования
type ApprovalAction struct {
	ApprovalID      uint                      `json:"approval_id"`
	Action          models.ApprovalActionType `json:"action"`
	Comments        string                    `json:"comments"`
	RejectionReason string                    `json:"rejection_reason"`
	DelegateToID    uint                      `json:"delegate_to_id"`
	DelegateToName  string                    `json:"delegate_to_name"`
	DelegateToEmail string                    `json:"delegate_to_email"`
	ActorID         uint                      `json:"-"`
	ActorName       string                    `json:"-"`
}

func (a ApprovalAction) Validate() error {
	switch a.Action {
	case models.ApprovalActionApprove, models.ApprovalActionCancel:
		return nil
	case models.ApprovalActionReject:
		if a.RejectionReason == "" && a.Comments == "" {
			return errors.New("укажите причину отклонения")
		}
		return nil
	case models.ApprovalActionDelegate:
		if a.DelegateToID == 0 {
			return errors.New("не указан сотрудник, которому делегируется согласование")
		}
		return nil
	}
	return errors.Errorf("неизвестное действие: %v", a.Action)
}

type ApprovalFilter struct {
	Statuses        []models.ApprovalStatus   `json:"statuses"`
	Types           []models.ApprovalType     `json:"types"`
	Priorities      []models.ApprovalPriority `json:"priorities"`
	ApproverID      *uint                     `json:"approver_id"`
	RequestedByID   *uint                     `json:"requested_by_id"`
	RelatedItemID   *uint                     `json:"related_item_id"`
	RelatedItemType models.RelatedItemType    `json:"related_item_type"`
	DueDateFrom     *time.Time                `json:"due_date_from"`
	DueDateTo       *time.Time                `json:"due_date_to"`
}

type ApprovalStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Overdue  int `json:"overdue"`
	DueToday int `json:"due_today"`
	DueSoon  int `json:"due_soon"`
}

type ApproveRequest struct {
	Comments string `json:"comments"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r RejectRequest) Validate() error {
	if r.Reason == "" {
		return errors.New("укажите причину отклонения")
	}
	return nil
}

type DelegateRequest struct {
	DelegateToID uint `json:"delegate_to_id" validate:"required"`
}

func (r DelegateRequest) Validate() error {
	return apimodels.ValidateStruct(r)
}

// DecisionRequest решение по запросу из очереди согласований
type DecisionRequest struct {
	Decision models.ApprovalStatus `json:"decision" validate:"required,oneof=Approved Rejected"`
	Comments string                `json:"comments"`
}

func (r DecisionRequest) Validate() error {
	if err := apimodels.ValidateStruct(r); err != nil {
		return err
	}
	if r.Decision == models.ApprovalRejected && r.Comments == "" {
		return errors.New("при отклонении комментарий обязателен")
	}
	return nil
}
