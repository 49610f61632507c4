package jmlprocessstore

import (
	"time"

	"jml-lite/lib/utils/listquery"
	"jml-lite/models"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(kind models.ProcessType, rec dbmodels.JmlProcess) (id uint, err error)
	GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error)
	Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error
	// ListActive процессы не в конечном статусе
	ListActive(kind models.ProcessType) ([]dbmodels.JmlProcess, error)
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
	return i.db.Table(dbmodels.ProcessTableName(kind))
}

func (i impl) Create(kind models.ProcessType, rec dbmodels.JmlProcess) (id uint, err error) {
	err = i.table(kind).Create(&rec).Error
	if err != nil {
		return 0, errors.Wrapf(err, "ошибка создания карточки процесса (%v)", kind)
	}
	return rec.ID, nil
}

func (i impl) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error) {
	rec := dbmodels.JmlProcess{}
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
		return errors.Errorf("карточка процесса %v (%v) не найдена", id, kind)
	}
	return nil
}

func (i impl) ListActive(kind models.ProcessType) ([]dbmodels.JmlProcess, error) {
	terminal := make([]string, 0, len(models.ProcessTerminalStatuses))
	for _, status := range models.ProcessTerminalStatuses {
		terminal = append(terminal, string(status))
	}
	list := []dbmodels.JmlProcess{}
	err := listquery.New().
		Where(listquery.NotIn("status", terminal)).
		OrderBy("id", true).
		Apply(i.table(kind)).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
