package dbmodels

import (
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
)

// AuditEntry запись журнала, только добавление
type AuditEntry struct {
	BaseModel
	Action          models.AuditAction     `gorm:"type:varchar(100);index"`
	EntityType      models.AuditEntityType `gorm:"type:varchar(50);index:idx_audit_entity"`
	EntityID        uint                   `gorm:"index:idx_audit_entity"`
	EntityTitle     string                 `gorm:"type:varchar(255)"`
	Details         string                 `gorm:"type:text"`
	PerformedByID   uint
	PerformedByName string `gorm:"type:varchar(255)"`
}

func (r AuditEntry) ToModelView() auditapimodels.AuditEntryView {
	return auditapimodels.AuditEntryView{
		ID:              r.ID,
		Action:          r.Action,
		EntityType:      r.EntityType,
		EntityID:        r.EntityID,
		EntityTitle:     r.EntityTitle,
		Details:         r.Details,
		PerformedByID:   r.PerformedByID,
		PerformedByName: r.PerformedByName,
		CreatedAt:       r.CreatedAt,
	}
}
