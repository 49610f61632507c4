package workflow

import (
	"context"
	"sync"
	"time"

	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	auditapimodels "jml-lite/models/api/audit"
	directoryapimodels "jml-lite/models/api/directory"
	inappapimodels "jml-lite/models/api/inapp"
	notificationapimodels "jml-lite/models/api/notification"
	settingsapimodels "jml-lite/models/api/settings"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
)

type fakeTaskStore struct {
	tasks     map[models.ProcessType]map[uint]dbmodels.JmlTask
	updates   []map[string]interface{}
	updateErr error
}

func (f *fakeTaskStore) CreateBatch(kind models.ProcessType, list []dbmodels.JmlTask) error {
	return nil
}

func (f *fakeTaskStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlTask, error) {
	rec, ok := f.tasks[kind][id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeTaskStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updMap)
	return nil
}

func (f *fakeTaskStore) ListByParent(kind models.ProcessType, parentID uint) ([]dbmodels.JmlTask, error) {
	result := []dbmodels.JmlTask{}
	for _, task := range f.tasks[kind] {
		if task.ParentID == parentID {
			result = append(result, task)
		}
	}
	return result, nil
}

func (f *fakeTaskStore) ListDue(kind models.ProcessType, from, to time.Time, statuses []models.TaskStatus) ([]dbmodels.JmlTask, error) {
	return nil, nil
}

type fakeProcessStore struct {
	processes map[models.ProcessType][]dbmodels.JmlProcess
}

func (f *fakeProcessStore) Create(kind models.ProcessType, rec dbmodels.JmlProcess) (uint, error) {
	return 0, nil
}

func (f *fakeProcessStore) GetByID(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error) {
	for _, rec := range f.processes[kind] {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeProcessStore) Update(kind models.ProcessType, id uint, updMap map[string]interface{}) error {
	return nil
}

func (f *fakeProcessStore) ListActive(kind models.ProcessType) ([]dbmodels.JmlProcess, error) {
	result := []dbmodels.JmlProcess{}
	for _, rec := range f.processes[kind] {
		if rec.Status != models.ProcessCompleted && rec.Status != models.ProcessCancelled {
			result = append(result, rec)
		}
	}
	return result, nil
}

type fakeAudit struct {
	mu         sync.Mutex
	activities []auditapimodels.Activity
}

func (f *fakeAudit) Log(ctx context.Context, activity auditapimodels.Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, activity)
}

func (f *fakeAudit) List(filter auditapimodels.AuditFilter) ([]auditapimodels.AuditEntryView, error) {
	return nil, nil
}

func (f *fakeAudit) Wait() {}

func (f *fakeAudit) actions() []models.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.AuditAction{}
	for _, a := range f.activities {
		result = append(result, a.Action)
	}
	return result
}

type fakeDirectory struct {
	users map[uint]directoryapimodels.UserView
}

func (f *fakeDirectory) GetUser(id uint) (*directoryapimodels.UserView, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.Errorf("пользователь %v не найден", id)
	}
	return &user, nil
}

type sentEmail struct {
	kind string
	task notificationapimodels.TaskNotification
	appr notificationapimodels.ApprovalNotification
	to   []notificationapimodels.Recipient
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (f *fakeEmail) record(e sentEmail) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return !f.fail
}

func (f *fakeEmail) all() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail{}, f.sent...)
}

func (f *fakeEmail) SendEmail(ctx context.Context, msg notificationapimodels.EmailMessage) bool {
	return f.record(sentEmail{kind: "raw", to: msg.To})
}

func (f *fakeEmail) SendTaskAssignedEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	return f.record(sentEmail{kind: "task_assigned", task: n})
}

func (f *fakeEmail) SendTaskCompletedEmail(ctx context.Context, n notificationapimodels.TaskNotification, to []notificationapimodels.Recipient) bool {
	return f.record(sentEmail{kind: "task_completed", task: n, to: to})
}

func (f *fakeEmail) SendTaskOverdueEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	return f.record(sentEmail{kind: "task_overdue", task: n})
}

func (f *fakeEmail) SendApprovalRequestEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool {
	return f.record(sentEmail{kind: "approval_request", appr: n, to: []notificationapimodels.Recipient{to}})
}

func (f *fakeEmail) SendApprovalDecisionEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool {
	return f.record(sentEmail{kind: "approval_decision", appr: n, to: []notificationapimodels.Recipient{to}})
}

func (f *fakeEmail) SendProcessStartedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool {
	return f.record(sentEmail{kind: "process_started", to: to})
}

func (f *fakeEmail) SendProcessCompletedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool {
	return f.record(sentEmail{kind: "process_completed", to: to})
}

type fakeTeams struct {
	mu        sync.Mutex
	tasks     []notificationapimodels.TaskNotification
	approvals []notificationapimodels.ApprovalNotification
}

func (f *fakeTeams) GetWebhookConfig(ctx context.Context) settingsapimodels.WebhookConfig {
	return settingsapimodels.WebhookConfig{}
}

func (f *fakeTeams) SaveWebhookConfig(ctx context.Context, cfg settingsapimodels.WebhookConfig) error {
	return nil
}

func (f *fakeTeams) SendTaskNotification(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, n)
	return true
}

func (f *fakeTeams) SendApprovalNotification(ctx context.Context, n notificationapimodels.ApprovalNotification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvals = append(f.approvals, n)
	return true
}

func (f *fakeTeams) SendProcessNotification(ctx context.Context, n notificationapimodels.ProcessNotification) bool {
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

type inAppCall struct {
	userID uint
	code   models.InAppCode
	args   []any
}

type fakeInApp struct {
	mu    sync.Mutex
	calls []inAppCall
}

func (f *fakeInApp) Notify(ctx context.Context, userID uint, code models.InAppCode, link string, args ...any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, inAppCall{userID: userID, code: code, args: args})
	return true
}

func (f *fakeInApp) List(userID uint, unreadOnly bool) ([]inappapimodels.NotificationView, error) {
	return nil, nil
}

func (f *fakeInApp) MarkRead(userID uint, ids []uint) error {
	return nil
}

type fakeApprovals struct {
	created   []approvalapimodels.ApprovalRequest
	createNil bool
	current   *approvalapimodels.ApprovalView
	approved  []uint
	rejected  []string
}

func (f *fakeApprovals) GetApprovals(filter approvalapimodels.ApprovalFilter) []approvalapimodels.ApprovalView {
	return nil
}

func (f *fakeApprovals) GetApproval(id uint) *approvalapimodels.ApprovalView {
	if f.current == nil || f.current.ID != id {
		return nil
	}
	view := *f.current
	return &view
}

func (f *fakeApprovals) GetPendingForApprover(approverID uint) []approvalapimodels.ApprovalView {
	return nil
}

func (f *fakeApprovals) CreateApproval(ctx context.Context, request approvalapimodels.ApprovalRequest) *approvalapimodels.ApprovalView {
	f.created = append(f.created, request)
	if f.createNil {
		return nil
	}
	return &approvalapimodels.ApprovalView{
		ID:            uint(len(f.created)),
		Title:         request.Title,
		Description:   request.Description,
		ApprovalType:  request.ApprovalType,
		Status:        models.ApprovalPending,
		Priority:      models.ApprovalPriorityMedium,
		ApproverID:    request.ApproverID,
		ApproverName:  request.ApproverName,
		ApproverEmail: request.ApproverEmail,
		DueDate:       request.DueDate,
	}
}

func (f *fakeApprovals) ProcessApproval(ctx context.Context, action approvalapimodels.ApprovalAction) bool {
	return true
}

func (f *fakeApprovals) Approve(ctx context.Context, id uint, comments, approverName string, approverID uint) bool {
	f.approved = append(f.approved, approverID)
	return true
}

func (f *fakeApprovals) Reject(ctx context.Context, id uint, reason, approverName string, approverID uint) bool {
	if reason == "" {
		return false
	}
	f.rejected = append(f.rejected, reason)
	return true
}

func (f *fakeApprovals) GetApprovalStats(approverID *uint) approvalapimodels.ApprovalStats {
	return approvalapimodels.ApprovalStats{}
}

func (f *fakeApprovals) HasPendingApproval(relatedItemID uint, relatedItemType models.RelatedItemType) bool {
	return false
}

func (f *fakeApprovals) ExpireOverdueApprovals(ctx context.Context) int {
	return 0
}

type fakeProgress struct {
	calls []uint
}

func (f *fakeProgress) RecalculateProgress(kind models.ProcessType, parentID uint) (int, error) {
	f.calls = append(f.calls, parentID)
	return 50, nil
}
