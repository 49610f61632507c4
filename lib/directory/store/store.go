package directorystore

import (
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetByID(id uint) (*dbmodels.DirectoryUser, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByID(id uint) (*dbmodels.DirectoryUser, error) {
	rec := dbmodels.DirectoryUser{}
	err := i.db.
		Where("id = ?", id).
		Where("is_active = ?", true).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
