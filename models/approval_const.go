package models

type ApprovalType string

const (
	ApprovalTypeOnboarding   ApprovalType = "Onboarding"
	ApprovalTypeMover        ApprovalType = "Mover"
	ApprovalTypeOffboarding  ApprovalType = "Offboarding"
	ApprovalTypeSystemAccess ApprovalType = "SystemAccess"
	ApprovalTypeEquipment    ApprovalType = "Equipment"
	ApprovalTypeTraining     ApprovalType = "Training"
)

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "Pending"
	ApprovalApproved  ApprovalStatus = "Approved"
	ApprovalRejected  ApprovalStatus = "Rejected"
	ApprovalCancelled ApprovalStatus = "Cancelled"
	ApprovalExpired   ApprovalStatus = "Expired"
)

// IsTerminal из конечного статуса переходов нет
func (s ApprovalStatus) IsTerminal() bool {
	return s != ApprovalPending
}

type ApprovalPriority string

const (
	ApprovalPriorityLow    ApprovalPriority = "Low"
	ApprovalPriorityMedium ApprovalPriority = "Medium"
	ApprovalPriorityHigh   ApprovalPriority = "High"
	ApprovalPriorityUrgent ApprovalPriority = "Urgent"
)

// ApprovalPriorityRank порядок сортировки, от младшего к старшему
var ApprovalPriorityRank = []string{
	string(ApprovalPriorityLow),
	string(ApprovalPriorityMedium),
	string(ApprovalPriorityHigh),
	string(ApprovalPriorityUrgent),
}

type RelatedItemType string

const (
	RelatedOnboarding  RelatedItemType = "Onboarding"
	RelatedMover       RelatedItemType = "Mover"
	RelatedOffboarding RelatedItemType = "Offboarding"
	RelatedTask        RelatedItemType = "Task"
)

type ApprovalActionType string

const (
	ApprovalActionApprove  ApprovalActionType = "approve"
	ApprovalActionReject   ApprovalActionType = "reject"
	ApprovalActionDelegate ApprovalActionType = "delegate"
	ApprovalActionCancel   ApprovalActionType = "cancel"
)
