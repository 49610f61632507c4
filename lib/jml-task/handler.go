package jmltask

import (
	"context"
	"time"

	"jml-lite/db"
	audittrail "jml-lite/lib/audit-trail"
	jmlprocessstore "jml-lite/lib/jml-process/store"
	jmltaskstore "jml-lite/lib/jml-task/store"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	taskapimodels "jml-lite/models/api/task"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	GetTask(kind models.ProcessType, id uint) (*taskapimodels.TaskView, error)
	ListByProcess(kind models.ProcessType, parentID uint) ([]taskapimodels.TaskView, error)
	// UpdateStatus при завершении проставляет дату и исполнителя, затем пересчитывает прогресс процесса
	UpdateStatus(ctx context.Context, kind models.ProcessType, id uint, status models.TaskStatus) (*taskapimodels.TaskView, error)
	// RecalculateProgress доля выполненных и неприменимых задач, в процентах
	RecalculateProgress(kind models.ProcessType, parentID uint) (int, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(
		jmltaskstore.NewInstance(db.DB),
		jmlprocessstore.NewInstance(db.DB),
		audittrail.Instance,
		time.Now,
	)
}

func NewProvider(store jmltaskstore.Provider, processStore jmlprocessstore.Provider, audit audittrail.Provider, now func() time.Time) Provider {
	return impl{
		store:        store,
		processStore: processStore,
		audit:        audit,
		now:          now,
	}
}

type impl struct {
	store        jmltaskstore.Provider
	processStore jmlprocessstore.Provider
	audit        audittrail.Provider
	now          func() time.Time
}

func (i impl) getLogger(kind models.ProcessType, id uint) *log.Entry {
	return log.
		WithField("process_type", kind).
		WithField("task_id", id)
}

func (i impl) GetTask(kind models.ProcessType, id uint) (*taskapimodels.TaskView, error) {
	rec, err := i.store.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	view := rec.ToModelView(kind)
	return &view, nil
}

func (i impl) ListByProcess(kind models.ProcessType, parentID uint) ([]taskapimodels.TaskView, error) {
	list, err := i.store.ListByParent(kind, parentID)
	if err != nil {
		return nil, err
	}
	result := make([]taskapimodels.TaskView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModelView(kind))
	}
	return result, nil
}

func (i impl) UpdateStatus(ctx context.Context, kind models.ProcessType, id uint, status models.TaskStatus) (*taskapimodels.TaskView, error) {
	logger := i.getLogger(kind, id)
	if !status.IsValid() {
		return nil, errors.Errorf("недопустимый статус задачи: %v", status)
	}
	rec, err := i.store.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	updMap := map[string]interface{}{
		"status": status,
	}
	if status == models.TaskCompleted {
		now := i.now()
		completedBy := ""
		if user, ok := authutils.UserFromContext(ctx); ok {
			completedBy = user.Name
		}
		updMap["completed_date"] = now
		updMap["completed_by_name"] = completedBy
		rec.CompletedDate = &now
		rec.CompletedByName = completedBy
	} else if rec.Status == models.TaskCompleted {
		updMap["completed_date"] = nil
		updMap["completed_by_name"] = ""
		rec.CompletedDate = nil
		rec.CompletedByName = ""
	}
	err = i.store.Update(kind, id, updMap)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка обновления статуса задачи")
	}
	previous := rec.Status
	rec.Status = status
	if i.audit != nil {
		i.audit.Log(ctx, auditapimodels.Activity{
			Action:      models.AuditTaskStatusChanged,
			EntityType:  models.EntityTask,
			EntityID:    id,
			EntityTitle: rec.Title,
			Details: map[string]any{
				"process_type": kind,
				"from":         previous,
				"to":           status,
			},
		})
	}
	if _, err = i.RecalculateProgress(kind, rec.ParentID); err != nil {
		logger.WithError(err).Error("ошибка пересчёта прогресса процесса")
	}
	view := rec.ToModelView(kind)
	return &view, nil
}

func (i impl) RecalculateProgress(kind models.ProcessType, parentID uint) (int, error) {
	tasks, err := i.store.ListByParent(kind, parentID)
	if err != nil {
		return 0, err
	}
	progress := Progress(tasks)
	process, err := i.processStore.GetByID(kind, parentID)
	if err != nil {
		return 0, err
	}
	if process == nil {
		return 0, errors.Errorf("карточка процесса %v (%v) не найдена", parentID, kind)
	}
	updMap := map[string]interface{}{
		"progress": progress,
	}
	if process.Status == models.ProcessNotStarted && progress > 0 {
		updMap["status"] = models.ProcessInProgress
	}
	err = i.processStore.Update(kind, parentID, updMap)
	if err != nil {
		return 0, err
	}
	return progress, nil
}
