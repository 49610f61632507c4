package jmltask

import (
	"context"
	"testing"
	"time"

	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	dbmodels "jml-lite/models/db"

	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	tasks   map[uint]dbmodels.JmlTask
	updates map[uint]map[string]interface{}
}

func (f *fakeTaskStore) CreateBatch(kind models.ProcessType, list []dbmodels.JmlTask) error {
	return nil
}

func (f *fakeTaskStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlTask, error) {
	rec, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeTaskStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	f.updates[id] = updMap
	rec := f.tasks[id]
	if status, ok := updMap["status"].(models.TaskStatus); ok {
		rec.Status = status
	}
	f.tasks[id] = rec
	return nil
}

func (f *fakeTaskStore) ListByParent(kind models.ProcessType, parentID uint) ([]dbmodels.JmlTask, error) {
	result := []dbmodels.JmlTask{}
	for _, rec := range f.tasks {
		if rec.ParentID == parentID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (f *fakeTaskStore) ListDue(kind models.ProcessType, from, to time.Time, statuses []models.TaskStatus) ([]dbmodels.JmlTask, error) {
	return nil, nil
}

type fakeProcessStore struct {
	process dbmodels.JmlProcess
	updates []map[string]interface{}
}

func (f *fakeProcessStore) Create(kind models.ProcessType, rec dbmodels.JmlProcess) (uint, error) {
	return 0, nil
}

func (f *fakeProcessStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error) {
	if id != f.process.ID {
		return nil, nil
	}
	rec := f.process
	return &rec, nil
}

func (f *fakeProcessStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	f.updates = append(f.updates, updMap)
	return nil
}

func (f *fakeProcessStore) ListActive(kind models.ProcessType) ([]dbmodels.JmlProcess, error) {
	return nil, nil
}

type fakeAudit struct {
	activities []auditapimodels.Activity
}

func (f *fakeAudit) Log(ctx context.Context, activity auditapimodels.Activity) {
	f.activities = append(f.activities, activity)
}

func (f *fakeAudit) List(filter auditapimodels.AuditFilter) ([]auditapimodels.AuditEntryView, error) {
	return nil, nil
}

func (f *fakeAudit) Wait() {}

func TestProgress(t *testing.T) {
	t.Run(`empty`, func(t *testing.T) {
		require.Equal(t, 0, Progress(nil))
	})

	t.Run(`completed and not applicable count as done`, func(t *testing.T) {
		tasks := []dbmodels.JmlTask{
			{Status: models.TaskCompleted},
			{Status: models.TaskNotApplicable},
			{Status: models.TaskInProgress},
		}
		require.Equal(t, 66, Progress(tasks))
	})
}

func TestUpdateStatus(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	newHandler := func() (Provider, *fakeTaskStore, *fakeProcessStore, *fakeAudit) {
		tasks := &fakeTaskStore{
			tasks: map[uint]dbmodels.JmlTask{
				1: {BaseModel: dbmodels.BaseModel{ID: 1}, ParentID: 10, Title: "Ноутбук", Status: models.TaskPending},
				2: {BaseModel: dbmodels.BaseModel{ID: 2}, ParentID: 10, Title: "Пропуск", Status: models.TaskPending},
				3: {BaseModel: dbmodels.BaseModel{ID: 3}, ParentID: 10, Title: "Почта", Status: models.TaskCompleted, CompletedByName: "Мария", CompletedDate: &now},
				4: {BaseModel: dbmodels.BaseModel{ID: 4}, ParentID: 10, Title: "Инструктаж", Status: models.TaskNotApplicable},
			},
			updates: map[uint]map[string]interface{}{},
		}
		processes := &fakeProcessStore{process: dbmodels.JmlProcess{BaseModel: dbmodels.BaseModel{ID: 10}, Status: models.ProcessNotStarted}}
		audit := &fakeAudit{}
		return NewProvider(tasks, processes, audit, func() time.Time { return now }), tasks, processes, audit
	}
	ctx := authutils.ContextWithUser(context.Background(), authutils.User{ID: 2, Name: "Иван"})

	t.Run(`completion stamps date and user, recalculates progress`, func(t *testing.T) {
		h, tasks, processes, audit := newHandler()
		view, err := h.UpdateStatus(ctx, models.ProcessOnboarding, 1, models.TaskCompleted)
		require.Nil(t, err)
		require.NotNil(t, view)
		require.Equal(t, "Иван", view.CompletedByName)
		require.Equal(t, now, *view.CompletedDate)
		require.Equal(t, now, tasks.updates[1]["completed_date"])

		require.Len(t, audit.activities, 1)
		require.Equal(t, models.AuditTaskStatusChanged, audit.activities[0].Action)

		require.Len(t, processes.updates, 1)
		require.Equal(t, 75, processes.updates[0]["progress"])
		require.Equal(t, models.ProcessInProgress, processes.updates[0]["status"])
	})

	t.Run(`reopening clears completion`, func(t *testing.T) {
		h, tasks, _, _ := newHandler()
		view, err := h.UpdateStatus(ctx, models.ProcessOnboarding, 3, models.TaskInProgress)
		require.Nil(t, err)
		require.Nil(t, view.CompletedDate)
		require.Equal(t, "", view.CompletedByName)
		require.Contains(t, tasks.updates[3], "completed_date")
	})

	t.Run(`invalid status`, func(t *testing.T) {
		h, _, _, _ := newHandler()
		_, err := h.UpdateStatus(ctx, models.ProcessOnboarding, 1, models.TaskStatus("Done"))
		require.NotNil(t, err)
	})

	t.Run(`unknown task`, func(t *testing.T) {
		h, _, _, _ := newHandler()
		view, err := h.UpdateStatus(ctx, models.ProcessOnboarding, 99, models.TaskCompleted)
		require.Nil(t, err)
		require.Nil(t, view)
	})
}
