package jmlprocess

import (
	"context"
	"sync"
	"testing"
	"time"

	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	notificationapimodels "jml-lite/models/api/notification"
	processapimodels "jml-lite/models/api/process"
	settingsapimodels "jml-lite/models/api/settings"
	taskapimodels "jml-lite/models/api/task"
	dbmodels "jml-lite/models/db"

	"github.com/stretchr/testify/require"
)

type fakeProcessStore struct {
	records map[uint]dbmodels.JmlProcess
	updates []map[string]interface{}
}

func (f *fakeProcessStore) Create(kind models.ProcessType, rec dbmodels.JmlProcess) (uint, error) {
	id := uint(len(f.records) + 1)
	rec.ID = id
	f.records[id] = rec
	return id, nil
}

func (f *fakeProcessStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeProcessStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	f.updates = append(f.updates, updMap)
	return nil
}

func (f *fakeProcessStore) ListActive(kind models.ProcessType) ([]dbmodels.JmlProcess, error) {
	return nil, nil
}

type fakeTaskStore struct {
	created []dbmodels.JmlTask
}

func (f *fakeTaskStore) CreateBatch(kind models.ProcessType, list []dbmodels.JmlTask) error {
	f.created = append(f.created, list...)
	return nil
}

func (f *fakeTaskStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlTask, error) {
	return nil, nil
}

func (f *fakeTaskStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	return nil
}

func (f *fakeTaskStore) ListByParent(kind models.ProcessType, parentID uint) ([]dbmodels.JmlTask, error) {
	return nil, nil
}

func (f *fakeTaskStore) ListDue(kind models.ProcessType, from, to time.Time, statuses []models.TaskStatus) ([]dbmodels.JmlTask, error) {
	return nil, nil
}

type fakeTeams struct {
	mu        sync.Mutex
	processes []notificationapimodels.ProcessNotification
}

func (f *fakeTeams) GetWebhookConfig(ctx context.Context) settingsapimodels.WebhookConfig {
	return settingsapimodels.WebhookConfig{}
}

func (f *fakeTeams) SaveWebhookConfig(ctx context.Context, cfg settingsapimodels.WebhookConfig) error {
	return nil
}

func (f *fakeTeams) SendTaskNotification(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	return true
}

func (f *fakeTeams) SendApprovalNotification(ctx context.Context, n notificationapimodels.ApprovalNotification) bool {
	return true
}

func (f *fakeTeams) SendProcessNotification(ctx context.Context, n notificationapimodels.ProcessNotification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes = append(f.processes, n)
	return true
}

func (f *fakeTeams) SendGeneralNotification(ctx context.Context, n notificationapimodels.GeneralNotification) bool {
	return true
}

func (f *fakeTeams) SendTaskReminder(ctx context.Context, n notificationapimodels.TaskNotification) error {
	return nil
}

func (f *fakeTeams) TestWebhook(ctx context.Context, url string) settingsapimodels.WebhookTestResult {
	return settingsapimodels.WebhookTestResult{}
}

type fakeLifecycle struct {
	started   []uint
	completed []uint
}

func (f *fakeLifecycle) StartWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string) {
	f.started = append(f.started, processID)
}

func (f *fakeLifecycle) CompleteWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string) {
	f.completed = append(f.completed, processID)
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

type fixture struct {
	store     *fakeProcessStore
	tasks     *fakeTaskStore
	teams     *fakeTeams
	lifecycle *fakeLifecycle
	audit     *fakeAudit
}

func newFixture(teamsEnabled bool) (Provider, *fixture) {
	f := &fixture{
		store:     &fakeProcessStore{records: map[uint]dbmodels.JmlProcess{}},
		tasks:     &fakeTaskStore{},
		teams:     &fakeTeams{},
		lifecycle: &fakeLifecycle{},
		audit:     &fakeAudit{},
	}
	return NewProvider(f.store, f.tasks, f.teams, f.lifecycle, f.audit, teamsEnabled, "https://jml.local"), f
}

func submission() processapimodels.ProcessSubmission {
	return processapimodels.ProcessSubmission{
		EmployeeName: "Анна Смирнова",
		EmployeeID:   "E-100",
		JobTitle:     "Бухгалтер",
		Department:   "Финансы",
		Tasks: []taskapimodels.TaskConfig{
			{Title: "Выдать ноутбук", Priority: models.TaskPriorityCritical},
			{Title: "Создать почту", Priority: models.TaskPriorityLow},
			{Title: "Пропуск"},
		},
	}
}

func TestSubmit(t *testing.T) {
	ctx := authutils.ContextWithUser(context.Background(), authutils.User{ID: 3, Name: "Елена"})

	t.Run(`tasks are stored with normalized priority`, func(t *testing.T) {
		h, f := newFixture(true)
		view, err := h.Submit(ctx, models.ProcessOnboarding, submission())
		require.Nil(t, err)
		h.Wait()
		require.Equal(t, uint(1), view.ID)
		require.Equal(t, models.ProcessNotStarted, view.Status)
		require.Equal(t, "Елена", f.store.records[1].CreatedByName)

		require.Len(t, f.tasks.created, 3)
		require.Equal(t, models.TaskPriorityHigh, f.tasks.created[0].Priority)
		require.Equal(t, models.TaskPriorityLow, f.tasks.created[1].Priority)
		require.Equal(t, models.TaskPriorityMedium, f.tasks.created[2].Priority)
		for k, task := range f.tasks.created {
			require.Equal(t, uint(1), task.ParentID)
			require.Equal(t, models.TaskPending, task.Status)
			require.Equal(t, k, task.SortOrder)
		}

		require.Len(t, f.audit.activities, 1)
		require.Equal(t, models.AuditProcessCreated, f.audit.activities[0].Action)

		require.Len(t, f.teams.processes, 1)
		require.Equal(t, notificationapimodels.ProcessStarted, f.teams.processes[0].Kind)
		require.Equal(t, 3, f.teams.processes[0].TaskCount)
		require.Equal(t, "https://jml.local/onboarding/1", f.teams.processes[0].Link)
	})

	t.Run(`teams disabled`, func(t *testing.T) {
		h, f := newFixture(false)
		_, err := h.Submit(ctx, models.ProcessMover, submission())
		require.Nil(t, err)
		h.Wait()
		require.Empty(t, f.teams.processes)
	})

	t.Run(`validation`, func(t *testing.T) {
		h, f := newFixture(true)
		data := submission()
		data.EmployeeName = ""
		_, err := h.Submit(ctx, models.ProcessOnboarding, data)
		require.NotNil(t, err)
		require.Empty(t, f.store.records)
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run(`start and complete`, func(t *testing.T) {
		h, f := newFixture(true)
		view, err := h.Submit(ctx, models.ProcessOffboarding, submission())
		require.Nil(t, err)

		require.Nil(t, h.Start(ctx, models.ProcessOffboarding, view.ID))
		require.Equal(t, []uint{view.ID}, f.lifecycle.started)
		require.Equal(t, models.ProcessInProgress, f.store.updates[0]["status"])

		require.Nil(t, h.Complete(ctx, models.ProcessOffboarding, view.ID))
		h.Wait()
		require.Equal(t, []uint{view.ID}, f.lifecycle.completed)
		require.Equal(t, 100, f.store.updates[1]["progress"])
		kinds := []notificationapimodels.ProcessNotificationKind{}
		for _, n := range f.teams.processes {
			kinds = append(kinds, n.Kind)
		}
		require.ElementsMatch(t, []notificationapimodels.ProcessNotificationKind{notificationapimodels.ProcessStarted, notificationapimodels.ProcessCompleted}, kinds)
	})

	t.Run(`cancelled process cannot be completed`, func(t *testing.T) {
		h, f := newFixture(true)
		f.store.records[7] = dbmodels.JmlProcess{BaseModel: dbmodels.BaseModel{ID: 7}, Status: models.ProcessCancelled}
		require.NotNil(t, h.Complete(ctx, models.ProcessOnboarding, 7))
		require.Empty(t, f.lifecycle.completed)
	})

	t.Run(`unknown process`, func(t *testing.T) {
		h, _ := newFixture(true)
		require.NotNil(t, h.Start(ctx, models.ProcessOnboarding, 42))
	})
}
