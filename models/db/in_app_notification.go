package dbmodels

import (
	"jml-lite/models"
	inappapimodels "jml-lite/models/api/inapp"
)

type InAppNotification struct {
	BaseModel
	UserID uint             `gorm:"index:idx_in_app_user"`
	Code   models.InAppCode `gorm:"type:varchar(100)"`
	Title  string           `gorm:"type:varchar(255)"`
	Msg    string           `gorm:"type:text"`
	Link   string           `gorm:"type:varchar(500)"`
	IsRead bool             `gorm:"index:idx_in_app_user"`
}

func (r InAppNotification) ToModelView() inappapimodels.NotificationView {
	return inappapimodels.NotificationView{
		ID:        r.ID,
		Code:      r.Code,
		Title:     r.Title,
		Message:   r.Msg,
		Link:      r.Link,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}
