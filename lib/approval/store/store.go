package approvalstore

import (
	"time"

	"jml-lite/lib/utils/listquery"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Approval) (id uint, err error)
	GetByID(id uint) (*dbmodels.Approval, error)
	Update(id uint, updMap map[string]interface{}) error
	List(filter approvalapimodels.ApprovalFilter) ([]dbmodels.Approval, error)
	ListPendingOverdue(now time.Time) ([]dbmodels.Approval, error)
	ExistsPending(relatedItemID uint, relatedItemType models.RelatedItemType) (bool, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Approval) (id uint, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id uint) (*dbmodels.Approval, error) {
	rec := dbmodels.Approval{}
	err := i.db.
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

func (i impl) Update(id uint, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.Approval{}).
		Where("id = ?", id).
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.Errorf("запрос на согласование %v не найден", id)
	}
	return nil
}

// List фильтр по измерениям: внутри измерения OR, между измерениями AND
func (i impl) List(filter approvalapimodels.ApprovalFilter) ([]dbmodels.Approval, error) {
	q := FilterQuery(filter)
	list := []dbmodels.Approval{}
	err := q.Apply(i.db.Model(&dbmodels.Approval{})).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListPendingOverdue(now time.Time) ([]dbmodels.Approval, error) {
	list := []dbmodels.Approval{}
	err := listquery.New().
		Where(listquery.Eq("status", models.ApprovalPending)).
		Where(listquery.NotNull("due_date")).
		Where(listquery.Lt("due_date", now)).
		OrderBy("id", true).
		Apply(i.db.Model(&dbmodels.Approval{})).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ExistsPending(relatedItemID uint, relatedItemType models.RelatedItemType) (bool, error) {
	var count int64
	err := listquery.New().
		Where(listquery.Eq("related_item_id", relatedItemID)).
		Where(listquery.Eq("related_item_type", relatedItemType)).
		Where(listquery.Eq("status", models.ApprovalPending)).
		Apply(i.db.Model(&dbmodels.Approval{})).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FilterQuery условие и порядок выдачи: приоритет по убыванию, срок по возрастанию, новые первыми
func FilterQuery(filter approvalapimodels.ApprovalFilter) *listquery.Query {
	q := listquery.New()
	q.Where(eachEq("status", filter.Statuses)...)
	q.Where(eachEq("approval_type", filter.Types)...)
	q.Where(eachEq("priority", filter.Priorities)...)
	if filter.ApproverID != nil {
		q.Where(listquery.Eq("approver_id", *filter.ApproverID))
	}
	if filter.RequestedByID != nil {
		q.Where(listquery.Eq("requested_by_id", *filter.RequestedByID))
	}
	if filter.RelatedItemID != nil {
		q.Where(listquery.Eq("related_item_id", *filter.RelatedItemID))
	}
	if filter.RelatedItemType != "" {
		q.Where(listquery.Eq("related_item_type", filter.RelatedItemType))
	}
	if filter.DueDateFrom != nil {
		q.Where(listquery.Ge("due_date", *filter.DueDateFrom))
	}
	if filter.DueDateTo != nil {
		q.Where(listquery.Le("due_date", *filter.DueDateTo))
	}
	return q.
		OrderByRank("priority", models.ApprovalPriorityRank, false).
		OrderBy("due_date", true).
		OrderBy("created_at", false)
}

func eachEq[T ~string](field string, values []T) []listquery.Clause {
	result := make([]listquery.Clause, 0, len(values))
	for _, value := range values {
		result = append(result, listquery.Eq(field, string(value)))
	}
	return result
}
