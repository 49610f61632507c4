package jmltaskstore

import (
	"time"

	"jml-lite/lib/utils/listquery"
	"jml-lite/models"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Provider задачи трёх типов процессов, таблица выбирается по kind
type Provider interface {
	CreateBatch(kind models.ProcessType, list []dbmodels.JmlTask) error
	GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlTask, error)
	Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error
	ListByParent(kind models.ProcessType, parentID uint) ([]dbmodels.JmlTask, error)
	// ListDue задачи со сроком в [from, to); нулевая граница не ограничивает
	ListDue(kind models.ProcessType, from, to time.Time, statuses []models.TaskStatus) ([]dbmodels.JmlTask, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) table(kind models.ProcessType) *gorm.DB {
	return i.db.Table(dbmodels.TaskTableName(kind))
}

func (i impl) CreateBatch(kind models.ProcessType, list []dbmodels.JmlTask) error {
	if len(list) == 0 {
		return nil
	}
	err := i.table(kind).Create(&list).Error
	if err != nil {
		return errors.Wrapf(err, "ошибка создания задач (%v)", kind)
	}
	return nil
}

func (i impl) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlTask, error) {
	rec := dbmodels.JmlTask{}
	err := i.table(kind).
		Where("id = ?", id).
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

func (i impl) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	updMap["updated_at"] = time.Now()
	tx := i.table(kind).
		Where("id = ?", id).
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.Errorf("задача %v (%v) не найдена", id, kind)
	}
	return nil
}

func (i impl) ListByParent(kind models.ProcessType, parentID uint) ([]dbmodels.JmlTask, error) {
	list := []dbmodels.JmlTask{}
	err := listquery.New().
		Where(listquery.Eq("parent_id", parentID)).
		OrderBy("sort_order", true).
		OrderBy("id", true).
		Apply(i.table(kind)).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListDue(kind models.ProcessType, from, to time.Time, statuses []models.TaskStatus) ([]dbmodels.JmlTask, error) {
	list := []dbmodels.JmlTask{}
	err := DueQuery(from, to, statuses).
		Apply(i.table(kind)).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func DueQuery(from, to time.Time, statuses []models.TaskStatus) *listquery.Query {
	q := listquery.New().Where(listquery.NotNull("due_date"))
	if !from.IsZero() {
		q.Where(listquery.Ge("due_date", from))
	}
	if !to.IsZero() {
		q.Where(listquery.Lt("due_date", to))
	}
	statusClauses := make([]listquery.Clause, 0, len(statuses))
	for _, status := range statuses {
		statusClauses = append(statusClauses, listquery.Eq("status", string(status)))
	}
	q.Where(statusClauses...)
	return q.OrderBy("due_date", true)
}
