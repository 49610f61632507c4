package audittrailstore

import (
	"jml-lite/lib/utils/listquery"
	auditapimodels "jml-lite/models/api/audit"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultListLimit = 200

type Provider interface {
	Create(rec dbmodels.AuditEntry) (id uint, err error)
	List(filter auditapimodels.AuditFilter) ([]dbmodels.AuditEntry, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.AuditEntry) (id uint, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return 0, errors.Wrap(err, "ошибка записи в журнал аудита")
	}
	return rec.ID, nil
}

func (i impl) List(filter auditapimodels.AuditFilter) ([]dbmodels.AuditEntry, error) {
	q := listquery.New()
	if filter.EntityType != "" {
		q.Where(listquery.Eq("entity_type", filter.EntityType))
	}
	if filter.EntityID != 0 {
		q.Where(listquery.Eq("entity_id", filter.EntityID))
	}
	if filter.Action != "" {
		q.Where(listquery.Eq("action", filter.Action))
	}
	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	q.OrderBy("created_at", false).OrderBy("id", false).Top(limit)

	list := []dbmodels.AuditEntry{}
	err := q.Apply(i.db.Model(&dbmodels.AuditEntry{})).Find(&list).Error
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения журнала аудита")
	}
	return list, nil
}
