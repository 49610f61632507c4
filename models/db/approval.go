package dbmodels

import (
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	"time"
)

type Approval struct {
	BaseModel
	Title            string                  `gorm:"type:varchar(255)"`
	Description      string                  `gorm:"type:text"`
	ApprovalType     models.ApprovalType     `gorm:"type:varchar(50);index"`
	Status           models.ApprovalStatus   `gorm:"type:varchar(50);index"`
	Priority         models.ApprovalPriority `gorm:"type:varchar(50)"`
	RelatedItemID    uint                    `gorm:"index:idx_approval_related"`
	RelatedItemType  models.RelatedItemType  `gorm:"type:varchar(50);index:idx_approval_related"`
	RequestedByID    uint
	RequestedByName  string `gorm:"type:varchar(255)"`
	RequestedByEmail string `gorm:"type:varchar(255)"`
	RequestedDate    time.Time
	ApproverID       uint   `gorm:"index"`
	ApproverName     string `gorm:"type:varchar(255)"`
	ApproverEmail    string `gorm:"type:varchar(255)"`
	DecisionByID     *uint
	DecisionByName   string `gorm:"type:varchar(255)"`
	DecisionDate     *time.Time
	Comments         string `gorm:"type:text"`
	RejectionReason  string `gorm:"type:text"`
	DelegatedToID    *uint
	DelegatedToName  string `gorm:"type:varchar(255)"`
	DelegatedDate    *time.Time
	DueDate          *time.Time `gorm:"index"`
}

func (r Approval) ToModelView() approvalapimodels.ApprovalView {
	return approvalapimodels.ApprovalView{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ApprovalType:     r.ApprovalType,
		Status:           r.Status,
		Priority:         r.Priority,
		RelatedItemID:    r.RelatedItemID,
		RelatedItemType:  r.RelatedItemType,
		RequestedByID:    r.RequestedByID,
		RequestedByName:  r.RequestedByName,
		RequestedByEmail: r.RequestedByEmail,
		RequestedDate:    r.RequestedDate,
		ApproverID:       r.ApproverID,
		ApproverName:     r.ApproverName,
		ApproverEmail:    r.ApproverEmail,
		DecisionByName:   r.DecisionByName,
		DecisionDate:     r.DecisionDate,
		Comments:         r.Comments,
		RejectionReason:  r.RejectionReason,
		DelegatedToName:  r.DelegatedToName,
		DelegatedDate:    r.DelegatedDate,
		DueDate:          r.DueDate,
		CreatedAt:        r.CreatedAt,
	}
}
