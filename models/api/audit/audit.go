package auditapimodels

import (
	"jml-lite/models"
	"time"
)

// Activity запись для журнала; Details сериализуется в JSON
type Activity struct {
	Action      models.AuditAction
	EntityType  models.AuditEntityType
	EntityID    uint
	EntityTitle string
	Details     any
}

type AuditEntryView struct {
	ID              uint                   `json:"id"`
	Action          models.AuditAction     `json:"action"`
	EntityType      models.AuditEntityType `json:"entity_type"`
	EntityID        uint                   `json:"entity_id"`
	EntityTitle     string                 `json:"entity_title"`
	Details         string                 `json:"details"`
	PerformedByID   uint                   `json:"performed_by_id"`
	PerformedByName string                 `json:"performed_by_name"`
	CreatedAt       time.Time              `json:"created_at"`
}

type AuditFilter struct {
	EntityType models.AuditEntityType `query:"entity_type"`
	EntityID   uint                   `query:"entity_id"`
	Action     models.AuditAction     `query:"action"`
	Limit      int                    `query:"limit"`
}

// NotificationDetails содержимое Details для записей об отправке уведомлений
type NotificationDetails struct {
	NotificationID string   `json:"notification_id"`
	Channel        string   `json:"channel"`
	Category       string   `json:"category"`
	Recipients     []string `json:"recipients"`
	Subject        string   `json:"subject,omitempty"`
	Error          string   `json:"error,omitempty"`
}
