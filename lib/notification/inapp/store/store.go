package inappstore

import (
	dbmodels "jml-lite/models/db"

	"gorm.io/gorm"
)

const listLimit = 100

type Provider interface {
	Create(rec dbmodels.InAppNotification) (id uint, err error)
	List(userID uint, unreadOnly bool) ([]dbmodels.InAppNotification, error)
	MarkRead(userID uint, ids []uint) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.InAppNotification) (id uint, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (i impl) List(userID uint, unreadOnly bool) ([]dbmodels.InAppNotification, error) {
	list := []dbmodels.InAppNotification{}
	tx := i.db.
		Where("user_id = ?", userID)
	if unreadOnly {
		tx = tx.Where("is_read = ?", false)
	}
	err := tx.
		Order("created_at desc").
		Limit(listLimit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead пустой ids отмечает все уведомления пользователя
func (i impl) MarkRead(userID uint, ids []uint) error {
	tx := i.db.
		Model(&dbmodels.InAppNotification{}).
		Where("user_id = ?", userID).
		Where("is_read = ?", false)
	if len(ids) > 0 {
		tx = tx.Where("id IN ?", ids)
	}
	return tx.Update("is_read", true).Error
}
