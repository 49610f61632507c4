package configurationstore

import (
	"jml-lite/lib/utils/listquery"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	// ListByKeyMarker активные настройки, ключ которых содержит marker
	ListByKeyMarker(marker string) ([]dbmodels.ConfigurationEntry, error)
	Upsert(list []dbmodels.ConfigurationEntry) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) ListByKeyMarker(marker string) ([]dbmodels.ConfigurationEntry, error) {
	list := []dbmodels.ConfigurationEntry{}
	err := listquery.New().
		Where(listquery.Contains("config_key", marker)).
		Where(listquery.Eq("is_active", true)).
		Apply(i.db.Model(&dbmodels.ConfigurationEntry{})).
		Find(&list).
		Error
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения настроек")
	}
	return list, nil
}

func (i impl) Upsert(list []dbmodels.ConfigurationEntry) error {
	if len(list) == 0 {
		return nil
	}
	return i.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range list {
			rec := rec
			err := tx.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "config_key"}},
					DoUpdates: clause.AssignmentColumns([]string{"config_value", "category", "is_active", "updated_at"}),
				}).
				Create(&rec).
				Error
			if err != nil {
				return errors.Wrapf(err, "ошибка сохранения настройки %v", rec.ConfigKey)
			}
		}
		return nil
	})
}
