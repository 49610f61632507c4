package workflow

import (
	"context"
	"testing"
	"time"

	"jml-lite/lib/notification/graph"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	directoryapimodels "jml-lite/models/api/directory"
	taskapimodels "jml-lite/models/api/task"
	workflowapimodels "jml-lite/models/api/workflow"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC)

func daysAgo(days int) *time.Time {
	return helpers.Ptr(time.Date(2026, 10, 17-days, 0, 0, 0, 0, time.UTC))
}

func testConfig() WorkflowConfig {
	return WorkflowConfig{
		OverdueReminderDays: []int{1, 3, 7},
		ApprovalDueDays:     3,
		EmailEnabled:        true,
		TeamsEnabled:        true,
		InAppEnabled:        true,
		BaseURL:             "https://jml.local/",
	}
}

type fixture struct {
	tasks     *fakeTaskStore
	processes *fakeProcessStore
	approvals *fakeApprovals
	email     *fakeEmail
	teams     *fakeTeams
	inApp     *fakeInApp
	audit     *fakeAudit
	progress  *fakeProgress
	directory *fakeDirectory
}

func newFixture() *fixture {
	return &fixture{
		tasks: &fakeTaskStore{tasks: map[models.ProcessType]map[uint]dbmodels.JmlTask{
			models.ProcessOnboarding: {
				1: {BaseModel: dbmodels.BaseModel{ID: 1}, ParentID: 10, Title: "Выдать ноутбук", Status: models.TaskPending, Priority: models.TaskPriorityCritical, DueDate: daysAgo(1), AssigneeEmail: "it@contoso.com"},
				2: {BaseModel: dbmodels.BaseModel{ID: 2}, ParentID: 10, Title: "Создать учётную запись", Status: models.TaskInProgress, Priority: models.TaskPriorityHigh, DueDate: daysAgo(2)},
				3: {BaseModel: dbmodels.BaseModel{ID: 3}, ParentID: 10, Title: "Пропуск", Status: models.TaskPending, Priority: models.TaskPriorityLow, DueDate: daysAgo(3)},
				4: {BaseModel: dbmodels.BaseModel{ID: 4}, ParentID: 10, Title: "Инструктаж", Status: models.TaskCompleted, Priority: models.TaskPriorityLow, DueDate: daysAgo(3)},
				5: {BaseModel: dbmodels.BaseModel{ID: 5}, ParentID: 11, Title: "Архив", Status: models.TaskPending, Priority: models.TaskPriorityLow, DueDate: daysAgo(7)},
			},
			models.ProcessOffboarding: {
				6: {BaseModel: dbmodels.BaseModel{ID: 6}, ParentID: 30, Title: "Сдать оборудование", Status: models.TaskPending, Priority: models.TaskPriorityMedium, DueDate: daysAgo(7)},
				7: {BaseModel: dbmodels.BaseModel{ID: 7}, ParentID: 30, Title: "Без срока", Status: models.TaskPending, Priority: models.TaskPriorityMedium},
			},
		}},
		processes: &fakeProcessStore{processes: map[models.ProcessType][]dbmodels.JmlProcess{
			models.ProcessOnboarding: {
				{BaseModel: dbmodels.BaseModel{ID: 10}, EmployeeName: "Анна Смирнова", Status: models.ProcessInProgress},
				{BaseModel: dbmodels.BaseModel{ID: 11}, EmployeeName: "Иван Петров", Status: models.ProcessCompleted},
			},
			models.ProcessOffboarding: {
				{BaseModel: dbmodels.BaseModel{ID: 30}, EmployeeName: "Ольга Иванова", Status: models.ProcessNotStarted},
			},
		}},
		approvals: &fakeApprovals{},
		email:     &fakeEmail{},
		teams:     &fakeTeams{},
		inApp:     &fakeInApp{},
		audit:     &fakeAudit{},
		progress:  &fakeProgress{},
		directory: &fakeDirectory{users: map[uint]directoryapimodels.UserView{
			7:  {ID: 7, DisplayName: "Мария ИТ", Email: "maria@contoso.com"},
			8:  {ID: 8, DisplayName: "Олег Руководитель", Email: "oleg@contoso.com"},
			21: {ID: 21, DisplayName: "Без почты"},
		}},
	}
}

func (f *fixture) provider(conf WorkflowConfig) Provider {
	return NewProvider(Deps{
		TaskStore:    f.tasks,
		ProcessStore: f.processes,
		Approvals:    f.approvals,
		Email:        f.email,
		Teams:        f.teams,
		InApp:        f.inApp,
		Audit:        f.audit,
		Directory:    f.directory,
		Progress:     f.progress,
	}, conf, func() time.Time { return testNow })
}

func userCtx() context.Context {
	return authutils.ContextWithUser(context.Background(), authutils.User{ID: 5, Name: "Hr Manager", Email: "hr@contoso.com"})
}

func TestShouldSendReminder(t *testing.T) {
	h := newFixture().provider(testConfig())

	t.Run(`exact day offsets only`, func(t *testing.T) {
		require.Equal(t, true, h.ShouldSendReminder(*daysAgo(1), models.TaskPending))
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(2), models.TaskPending))
		require.Equal(t, true, h.ShouldSendReminder(*daysAgo(3), models.TaskPending))
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(5), models.TaskInProgress))
		require.Equal(t, true, h.ShouldSendReminder(*daysAgo(7), models.TaskInProgress))
	})

	t.Run(`not overdue`, func(t *testing.T) {
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(0), models.TaskPending))
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(-1), models.TaskPending))
	})

	t.Run(`closed tasks`, func(t *testing.T) {
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(3), models.TaskCompleted))
		require.Equal(t, false, h.ShouldSendReminder(*daysAgo(3), models.TaskNotApplicable))
	})

	t.Run(`time of day of due date does not matter`, func(t *testing.T) {
		due := time.Date(2026, 10, 14, 23, 59, 0, 0, time.UTC)
		require.Equal(t, true, h.ShouldSendReminder(due, models.TaskPending))
	})
}

func TestAssignTask(t *testing.T) {
	t.Run(`update failure returns false and sends nothing`, func(t *testing.T) {
		f := newFixture()
		f.tasks.updateErr = errors.New("connection refused")
		h := f.provider(testConfig())
		ok := h.AssignTask(userCtx(), taskapimodels.TaskAssignment{
			ProcessType: models.ProcessOnboarding,
			TaskID:      1,
			AssigneeID:  7,
		})
		h.Wait()
		require.Equal(t, false, ok)
		require.Empty(t, f.email.all())
		require.Empty(t, f.teams.tasks)
		require.Empty(t, f.audit.actions())
	})

	t.Run(`unknown task`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		ok := h.AssignTask(userCtx(), taskapimodels.TaskAssignment{
			ProcessType: models.ProcessMover,
			TaskID:      1,
			AssigneeID:  7,
		})
		require.Equal(t, false, ok)
	})

	t.Run(`assignee resolved from directory, all channels notified`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		ok := h.AssignTask(userCtx(), taskapimodels.TaskAssignment{
			ProcessType: models.ProcessOnboarding,
			TaskID:      1,
			AssigneeID:  7,
			Notes:       "до обеда",
		})
		h.Wait()
		require.Equal(t, true, ok)
		require.Len(t, f.tasks.updates, 1)
		require.Equal(t, "Мария ИТ", f.tasks.updates[0]["assignee_name"])
		require.Equal(t, "maria@contoso.com", f.tasks.updates[0]["assignee_email"])
		require.Equal(t, "до обеда", f.tasks.updates[0]["notes"])

		sent := f.email.all()
		require.Len(t, sent, 1)
		require.Equal(t, "task_assigned", sent[0].kind)
		require.Equal(t, "maria@contoso.com", sent[0].task.AssigneeEmail)
		require.Equal(t, "Анна Смирнова", sent[0].task.EmployeeName)
		require.Equal(t, models.TaskPriorityHigh, sent[0].task.Priority)
		require.Equal(t, "https://jml.local/onboarding/10", sent[0].task.Link)

		require.Len(t, f.teams.tasks, 1)
		require.Equal(t, models.TaskPriorityHigh, f.teams.tasks[0].Priority)
		require.Len(t, f.inApp.calls, 1)
		require.Equal(t, uint(7), f.inApp.calls[0].userID)
		require.Equal(t, models.InAppTaskAssigned, f.inApp.calls[0].code)
		require.Equal(t, []models.AuditAction{models.AuditTaskAssigned}, f.audit.actions())
	})

	t.Run(`disabled channels are skipped`, func(t *testing.T) {
		f := newFixture()
		conf := testConfig()
		conf.EmailEnabled = false
		conf.TeamsEnabled = false
		conf.InAppEnabled = false
		h := f.provider(conf)
		ok := h.AssignTask(userCtx(), taskapimodels.TaskAssignment{
			ProcessType:   models.ProcessOnboarding,
			TaskID:        1,
			AssigneeID:    7,
			AssigneeName:  "Мария",
			AssigneeEmail: "m@contoso.com",
		})
		h.Wait()
		require.Equal(t, true, ok)
		require.Empty(t, f.email.all())
		require.Empty(t, f.teams.tasks)
		require.Empty(t, f.inApp.calls)
	})

	t.Run(`without transport the email is queued`, func(t *testing.T) {
		f := newFixture()
		h := NewProvider(Deps{
			TaskStore:    f.tasks,
			ProcessStore: f.processes,
			Email:        graph.NewProvider(nil, f.audit),
			Audit:        f.audit,
			Directory:    f.directory,
		}, testConfig(), func() time.Time { return testNow })
		ok := h.AssignTask(userCtx(), taskapimodels.TaskAssignment{
			ProcessType: models.ProcessOnboarding,
			TaskID:      1,
			AssigneeID:  7,
		})
		h.Wait()
		require.Equal(t, true, ok)
		require.ElementsMatch(t, []models.AuditAction{models.AuditTaskAssigned, models.AuditNotificationQueued}, f.audit.actions())
	})
}

func TestOnTaskCompleted(t *testing.T) {
	f := newFixture()
	h := f.provider(testConfig())
	ok := h.OnTaskCompleted(userCtx(), taskapimodels.TaskCompletion{
		ProcessType:   models.ProcessOnboarding,
		TaskID:        2,
		NotifyUserIDs: []uint{7, 99, 8, 21},
	})
	h.Wait()
	require.Equal(t, true, ok)

	sent := f.email.all()
	require.Len(t, sent, 1)
	require.Equal(t, "task_completed", sent[0].kind)
	require.Len(t, sent[0].to, 2)
	require.Equal(t, "maria@contoso.com", sent[0].to[0].Email)
	require.Equal(t, "oleg@contoso.com", sent[0].to[1].Email)
	require.Equal(t, "Hr Manager", sent[0].task.CompletedBy)

	require.Len(t, f.inApp.calls, 3)
	require.Equal(t, []models.AuditAction{models.AuditTaskCompleted}, f.audit.actions())
	require.Equal(t, []uint{10}, f.progress.calls)
}

func TestSendOverdueReminders(t *testing.T) {
	t.Run(`exact offsets of active processes`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		sent := h.SendOverdueReminders(context.Background())
		require.Equal(t, 3, sent)

		titles := []string{}
		for _, e := range f.email.all() {
			require.Equal(t, "task_overdue", e.kind)
			titles = append(titles, e.task.TaskTitle)
		}
		require.ElementsMatch(t, []string{"Выдать ноутбук", "Пропуск", "Сдать оборудование"}, titles)
		require.Len(t, f.audit.actions(), 3)
	})

	t.Run(`failed sends are not counted`, func(t *testing.T) {
		f := newFixture()
		f.email.fail = true
		h := f.provider(testConfig())
		require.Equal(t, 0, h.SendOverdueReminders(context.Background()))
		require.Len(t, f.email.all(), 3)
		require.Empty(t, f.audit.actions())
	})

	t.Run(`email disabled`, func(t *testing.T) {
		f := newFixture()
		conf := testConfig()
		conf.EmailEnabled = false
		h := f.provider(conf)
		require.Equal(t, 0, h.SendOverdueReminders(context.Background()))
		require.Empty(t, f.email.all())
	})
}

func TestRequestApproval(t *testing.T) {
	t.Run(`system access`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		ok := h.RequestSystemAccessApproval(userCtx(), workflowapimodels.SystemAccessRequest{
			ProcessType:   models.ProcessOnboarding,
			ProcessID:     10,
			EmployeeName:  "Анна Смирнова",
			Systems:       []string{"1C", "Jira"},
			ApproverID:    8,
			Justification: "новый бухгалтер",
		})
		h.Wait()
		require.Equal(t, true, ok)
		require.Len(t, f.approvals.created, 1)
		req := f.approvals.created[0]
		require.Equal(t, models.ApprovalTypeSystemAccess, req.ApprovalType)
		require.Equal(t, "Олег Руководитель", req.ApproverName)
		require.Equal(t, "oleg@contoso.com", req.ApproverEmail)
		require.Equal(t, models.RelatedOnboarding, req.RelatedItemType)
		require.Equal(t, uint(10), req.RelatedItemID)
		require.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *req.DueDate)
		require.Contains(t, req.Description, "1C, Jira")

		sent := f.email.all()
		require.Len(t, sent, 1)
		require.Equal(t, "approval_request", sent[0].kind)
		require.Equal(t, "oleg@contoso.com", sent[0].to[0].Email)
		require.Len(t, f.teams.approvals, 1)
		require.Len(t, f.inApp.calls, 1)
		require.Equal(t, models.InAppApprovalRequired, f.inApp.calls[0].code)
	})

	t.Run(`creation failure`, func(t *testing.T) {
		f := newFixture()
		f.approvals.createNil = true
		h := f.provider(testConfig())
		ok := h.RequestEquipmentApproval(userCtx(), workflowapimodels.EquipmentRequest{
			ProcessType:  models.ProcessMover,
			ProcessID:    20,
			EmployeeName: "Пётр",
			Items:        []string{"Ноутбук"},
			ApproverID:   8,
		})
		h.Wait()
		require.Equal(t, false, ok)
		require.Empty(t, f.email.all())
	})

	t.Run(`invalid request`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		ok := h.RequestEquipmentApproval(userCtx(), workflowapimodels.EquipmentRequest{
			ProcessType: models.ProcessMover,
			ProcessID:   20,
			ApproverID:  8,
		})
		require.Equal(t, false, ok)
		require.Empty(t, f.approvals.created)
	})
}

func TestProcessApprovalDecision(t *testing.T) {
	pending := &approvalapimodels.ApprovalView{
		ID:               4,
		Title:            "Доступ к системам: Анна Смирнова",
		ApprovalType:     models.ApprovalTypeSystemAccess,
		Status:           models.ApprovalPending,
		RequestedByID:    3,
		RequestedByName:  "Елена",
		RequestedByEmail: "elena@contoso.com",
	}

	t.Run(`acting user is required`, func(t *testing.T) {
		f := newFixture()
		f.approvals.current = pending
		h := f.provider(testConfig())
		require.Equal(t, false, h.ProcessApprovalDecision(context.Background(), 4, models.ApprovalApproved, ""))
		require.Empty(t, f.approvals.approved)
	})

	t.Run(`approve notifies requestor`, func(t *testing.T) {
		f := newFixture()
		f.approvals.current = pending
		h := f.provider(testConfig())
		require.Equal(t, true, h.ProcessApprovalDecision(userCtx(), 4, models.ApprovalApproved, "ок"))
		h.Wait()
		require.Equal(t, []uint{5}, f.approvals.approved)

		sent := f.email.all()
		require.Len(t, sent, 1)
		require.Equal(t, "approval_decision", sent[0].kind)
		require.Equal(t, "elena@contoso.com", sent[0].to[0].Email)
		require.Equal(t, models.ApprovalApproved, sent[0].appr.Status)
		require.Equal(t, "Hr Manager", sent[0].appr.DecisionByName)
		require.Equal(t, "https://jml.local/approvals/4", sent[0].appr.Link)
		require.Len(t, f.inApp.calls, 1)
		require.Equal(t, uint(3), f.inApp.calls[0].userID)
	})

	t.Run(`reject without reason fails`, func(t *testing.T) {
		f := newFixture()
		f.approvals.current = pending
		h := f.provider(testConfig())
		require.Equal(t, false, h.ProcessApprovalDecision(userCtx(), 4, models.ApprovalRejected, ""))
		h.Wait()
		require.Empty(t, f.email.all())
	})

	t.Run(`unsupported decision`, func(t *testing.T) {
		f := newFixture()
		f.approvals.current = pending
		h := f.provider(testConfig())
		require.Equal(t, false, h.ProcessApprovalDecision(userCtx(), 4, models.ApprovalExpired, ""))
	})

	t.Run(`unknown approval`, func(t *testing.T) {
		f := newFixture()
		h := f.provider(testConfig())
		require.Equal(t, false, h.ProcessApprovalDecision(userCtx(), 4, models.ApprovalApproved, ""))
	})
}

func TestLifecycleMarkers(t *testing.T) {
	f := newFixture()
	h := f.provider(testConfig())
	h.StartOnboardingWorkflow(userCtx(), 10, "Анна Смирнова")
	h.CompleteWorkflow(userCtx(), models.ProcessOffboarding, 30, "Ольга Иванова")
	require.Equal(t, []models.AuditAction{models.AuditWorkflowStarted, models.AuditWorkflowCompleted}, f.audit.actions())
	require.Equal(t, models.EntityOffboarding, f.audit.activities[1].EntityType)
}
