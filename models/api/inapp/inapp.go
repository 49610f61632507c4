package inappapimodels

import (
	"jml-lite/models"
	"time"
)

type NotificationView struct {
	ID        uint             `json:"id"`
	Code      models.InAppCode `json:"code"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type MarkReadRequest struct {
	IDs []uint `json:"ids"`
}
