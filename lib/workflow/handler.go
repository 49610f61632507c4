package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"jml-lite/config"
	"jml-lite/db"
	"jml-lite/lib/approval"
	audittrail "jml-lite/lib/audit-trail"
	"jml-lite/lib/directory"
	jmlprocessstore "jml-lite/lib/jml-process/store"
	jmltask "jml-lite/lib/jml-task"
	jmltaskstore "jml-lite/lib/jml-task/store"
	"jml-lite/lib/notification/graph"
	"jml-lite/lib/notification/inapp"
	"jml-lite/lib/notification/teams"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/lib/utils/detached"
	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	auditapimodels "jml-lite/models/api/audit"
	directoryapimodels "jml-lite/models/api/directory"
	notificationapimodels "jml-lite/models/api/notification"
	taskapimodels "jml-lite/models/api/task"
	workflowapimodels "jml-lite/models/api/workflow"
	dbmodels "jml-lite/models/db"

	log "github.com/sirupsen/logrus"
)

type Provider interface {
	// AssignTask false только если не удалось записать исполнителя
	AssignTask(ctx context.Context, assignment taskapimodels.TaskAssignment) bool
	OnTaskCompleted(ctx context.Context, completion taskapimodels.TaskCompletion) bool
	// SendOverdueReminders письма по задачам, просроченным ровно на один из дней OverdueReminderDays
	SendOverdueReminders(ctx context.Context) int
	ShouldSendReminder(dueDate time.Time, status models.TaskStatus) bool
	RequestSystemAccessApproval(ctx context.Context, request workflowapimodels.SystemAccessRequest) bool
	RequestEquipmentApproval(ctx context.Context, request workflowapimodels.EquipmentRequest) bool
	ProcessApprovalDecision(ctx context.Context, approvalID uint, decision models.ApprovalStatus, comments string) bool
	StartWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string)
	CompleteWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string)
	StartOnboardingWorkflow(ctx context.Context, processID uint, employeeName string)
	CompleteOnboardingWorkflow(ctx context.Context, processID uint, employeeName string)
	// Wait дожидается фоновых уведомлений
	Wait()
}

type WorkflowConfig struct {
	OverdueReminderDays []int
	ApprovalDueDays     int
	EmailEnabled        bool
	TeamsEnabled        bool
	InAppEnabled        bool
	BaseURL             string
}

func ConfigFromConf(conf *config.Configuration) WorkflowConfig {
	return WorkflowConfig{
		OverdueReminderDays: conf.Workflow.OverdueReminderDays,
		ApprovalDueDays:     conf.Workflow.ApprovalDueDays,
		EmailEnabled:        *conf.Notifications.EmailEnabled,
		TeamsEnabled:        *conf.Notifications.TeamsEnabled,
		InAppEnabled:        *conf.Notifications.InAppEnabled,
		BaseURL:             conf.App.BaseUrl,
	}
}

// ProgressCalculator пересчёт прогресса карточки по её задачам
type ProgressCalculator interface {
	RecalculateProgress(kind models.ProcessType, parentID uint) (int, error)
}

type Deps struct {
	TaskStore    jmltaskstore.Provider
	ProcessStore jmlprocessstore.Provider
	Approvals    approval.Provider
	Email        graph.Provider
	Teams        teams.Provider
	InApp        inapp.Provider
	Audit        audittrail.Provider
	Directory    directory.Provider
	Progress     ProgressCalculator
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(Deps{
		TaskStore:    jmltaskstore.NewInstance(db.DB),
		ProcessStore: jmlprocessstore.NewInstance(db.DB),
		Approvals:    approval.Instance,
		Email:        graph.Instance,
		Teams:        teams.Instance,
		InApp:        inapp.Instance,
		Audit:        audittrail.Instance,
		Directory:    directory.Instance,
		Progress:     jmltask.Instance,
	}, ConfigFromConf(config.Conf), time.Now)
}

func NewProvider(deps Deps, conf WorkflowConfig, now func() time.Time) Provider {
	return &impl{
		Deps:   deps,
		conf:   conf,
		now:    now,
		runner: detached.NewRunner(),
	}
}

type impl struct {
	Deps
	conf   WorkflowConfig
	now    func() time.Time
	runner *detached.Runner
}

func (i *impl) getLogger(kind models.ProcessType, taskID uint) *log.Entry {
	return log.
		WithField("process_type", kind).
		WithField("task_id", taskID)
}

func (i *impl) AssignTask(ctx context.Context, assignment taskapimodels.TaskAssignment) bool {
	kind := assignment.ProcessType
	logger := i.getLogger(kind, assignment.TaskID)
	if err := assignment.Validate(); err != nil {
		logger.WithError(err).Warn("некорректное назначение задачи")
		return false
	}
	task, err := i.TaskStore.GetByID(kind, assignment.TaskID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения задачи")
		return false
	}
	if task == nil {
		logger.Warn("задача не найдена")
		return false
	}
	if assignment.AssigneeName == "" || assignment.AssigneeEmail == "" {
		user := i.lookupUser(assignment.AssigneeID)
		if user != nil {
			if assignment.AssigneeName == "" {
				assignment.AssigneeName = user.DisplayName
			}
			if assignment.AssigneeEmail == "" {
				assignment.AssigneeEmail = user.Email
			}
		}
	}
	updMap := map[string]interface{}{
		"assignee_id":    assignment.AssigneeID,
		"assignee_name":  assignment.AssigneeName,
		"assignee_email": assignment.AssigneeEmail,
	}
	if assignment.Notes != "" {
		updMap["notes"] = assignment.Notes
		task.Notes = assignment.Notes
	}
	err = i.TaskStore.Update(kind, task.ID, updMap)
	if err != nil {
		logger.WithError(err).Error("ошибка назначения исполнителя задачи")
		return false
	}
	task.AssigneeID = &assignment.AssigneeID
	task.AssigneeName = assignment.AssigneeName
	task.AssigneeEmail = assignment.AssigneeEmail

	employeeName := i.employeeName(kind, task.ParentID)
	n := i.taskNotification(kind, *task, employeeName, notificationapimodels.TaskAssigned)
	if i.conf.EmailEnabled && i.Email != nil {
		i.runner.Go(ctx, "email-task-assigned", func(ctx context.Context) {
			i.Email.SendTaskAssignedEmail(ctx, n)
		})
	}
	if i.conf.TeamsEnabled && i.Teams != nil {
		i.runner.Go(ctx, "teams-task-assigned", func(ctx context.Context) {
			i.Teams.SendTaskNotification(ctx, n)
		})
	}
	if i.conf.InAppEnabled && i.InApp != nil {
		i.runner.Go(ctx, "in-app-task-assigned", func(ctx context.Context) {
			i.InApp.Notify(ctx, assignment.AssigneeID, models.InAppTaskAssigned, n.Link, task.Title, employeeName)
		})
	}
	i.log(ctx, models.AuditTaskAssigned, models.EntityTask, task.ID, task.Title, map[string]any{
		"process_type": kind,
		"assignee":     assignment.AssigneeName,
		"assignee_id":  assignment.AssigneeID,
	})
	logger.WithField("assignee_id", assignment.AssigneeID).Info("исполнитель задачи назначен")
	return true
}

func (i *impl) OnTaskCompleted(ctx context.Context, completion taskapimodels.TaskCompletion) bool {
	kind := completion.ProcessType
	logger := i.getLogger(kind, completion.TaskID)
	task, err := i.TaskStore.GetByID(kind, completion.TaskID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения задачи")
		return false
	}
	if task == nil {
		logger.Warn("задача не найдена")
		return false
	}
	if task.CompletedByName == "" {
		if user, ok := authutils.UserFromContext(ctx); ok {
			task.CompletedByName = user.Name
		}
	}

	recipients := []notificationapimodels.Recipient{}
	userIDs := []uint{}
	for _, id := range completion.NotifyUserIDs {
		user := i.lookupUser(id)
		if user == nil {
			continue
		}
		userIDs = append(userIDs, id)
		if user.Email != "" {
			recipients = append(recipients, notificationapimodels.Recipient{Name: user.DisplayName, Email: user.Email})
		}
	}

	employeeName := i.employeeName(kind, task.ParentID)
	n := i.taskNotification(kind, *task, employeeName, notificationapimodels.TaskCompleted)
	n.CompletedBy = task.CompletedByName
	if i.conf.EmailEnabled && i.Email != nil && len(recipients) > 0 {
		i.runner.Go(ctx, "email-task-completed", func(ctx context.Context) {
			i.Email.SendTaskCompletedEmail(ctx, n, recipients)
		})
	}
	if i.conf.InAppEnabled && i.InApp != nil && len(userIDs) > 0 {
		i.runner.Go(ctx, "in-app-task-completed", func(ctx context.Context) {
			for _, id := range userIDs {
				i.InApp.Notify(ctx, id, models.InAppTaskCompleted, n.Link, task.Title, n.CompletedBy)
			}
		})
	}
	i.log(ctx, models.AuditTaskCompleted, models.EntityTask, task.ID, task.Title, map[string]any{
		"process_type": kind,
		"completed_by": n.CompletedBy,
		"notified":     len(recipients),
	})
	if i.Progress != nil {
		if _, err = i.Progress.RecalculateProgress(kind, task.ParentID); err != nil {
			logger.WithError(err).Error("ошибка пересчёта прогресса процесса")
		}
	}
	return true
}

func (i *impl) SendOverdueReminders(ctx context.Context) int {
	if !i.conf.EmailEnabled || i.Email == nil {
		log.Debug("напоминания по почте отключены")
		return 0
	}
	sent := 0
	for _, kind := range models.ProcessTypes {
		logger := log.WithField("process_type", kind)
		processes, err := i.ProcessStore.ListActive(kind)
		if err != nil {
			logger.WithError(err).Error("ошибка получения активных процессов")
			continue
		}
		for _, process := range processes {
			if helpers.IsContextDone(ctx) {
				return sent
			}
			tasks, err := i.TaskStore.ListByParent(kind, process.ID)
			if err != nil {
				logger.WithError(err).WithField("process_id", process.ID).Error("ошибка получения задач процесса")
				continue
			}
			for _, task := range tasks {
				if task.DueDate == nil || !i.ShouldSendReminder(*task.DueDate, task.Status) {
					continue
				}
				n := i.taskNotification(kind, task, process.EmployeeName, notificationapimodels.TaskOverdue)
				n.DaysOverdue = i.daysOverdue(*task.DueDate)
				if !i.Email.SendTaskOverdueEmail(ctx, n) {
					continue
				}
				sent++
				i.log(ctx, models.AuditReminderSent, models.EntityTask, task.ID, task.Title, map[string]any{
					"process_type": kind,
					"days_overdue": n.DaysOverdue,
					"assignee":     task.AssigneeEmail,
				})
			}
		}
	}
	log.WithField("sent", sent).Info("напоминания о просроченных задачах отправлены")
	return sent
}

func (i *impl) ShouldSendReminder(dueDate time.Time, status models.TaskStatus) bool {
	if !status.IsOpen() {
		return false
	}
	days := i.daysOverdue(dueDate)
	return days > 0 && slices.Contains(i.conf.OverdueReminderDays, days)
}

func (i *impl) daysOverdue(dueDate time.Time) int {
	now := i.now()
	return helpers.DaysBetween(dueDate.In(now.Location()), now)
}

func (i *impl) RequestSystemAccessApproval(ctx context.Context, request workflowapimodels.SystemAccessRequest) bool {
	if err := request.Validate(); err != nil {
		log.WithError(err).Warn("некорректный запрос доступа к системам")
		return false
	}
	return i.requestApproval(ctx, approvalRequestData{
		approvalType:  models.ApprovalTypeSystemAccess,
		title:         fmt.Sprintf("Доступ к системам: %s", request.EmployeeName),
		items:         request.Systems,
		justification: request.Justification,
		kind:          request.ProcessType,
		processID:     request.ProcessID,
		approverID:    request.ApproverID,
		priority:      request.Priority,
	})
}

func (i *impl) RequestEquipmentApproval(ctx context.Context, request workflowapimodels.EquipmentRequest) bool {
	if err := request.Validate(); err != nil {
		log.WithError(err).Warn("некорректный запрос оборудования")
		return false
	}
	return i.requestApproval(ctx, approvalRequestData{
		approvalType:  models.ApprovalTypeEquipment,
		title:         fmt.Sprintf("Оборудование: %s", request.EmployeeName),
		items:         request.Items,
		justification: request.Justification,
		kind:          request.ProcessType,
		processID:     request.ProcessID,
		approverID:    request.ApproverID,
		priority:      request.Priority,
	})
}

type approvalRequestData struct {
	approvalType  models.ApprovalType
	title         string
	items         []string
	justification string
	kind          models.ProcessType
	processID     uint
	approverID    uint
	priority      models.ApprovalPriority
}

func (i *impl) requestApproval(ctx context.Context, data approvalRequestData) bool {
	logger := log.
		WithField("approval_type", data.approvalType).
		WithField("process_type", data.kind).
		WithField("process_id", data.processID)
	if i.Approvals == nil {
		logger.Error("сервис согласований не инициализирован")
		return false
	}
	description := strings.Join(data.items, ", ")
	if data.justification != "" {
		description = fmt.Sprintf("%s\nОбоснование: %s", description, data.justification)
	}
	due := helpers.StartOfDay(helpers.AddDays(i.now(), i.conf.ApprovalDueDays))
	request := approvalapimodels.ApprovalRequest{
		Title:           data.title,
		Description:     description,
		ApprovalType:    data.approvalType,
		Priority:        data.priority,
		RelatedItemID:   data.processID,
		RelatedItemType: data.kind.RelatedItemType(),
		ApproverID:      data.approverID,
		DueDate:         &due,
	}
	if approver := i.lookupUser(data.approverID); approver != nil {
		request.ApproverName = approver.DisplayName
		request.ApproverEmail = approver.Email
	}
	created := i.Approvals.CreateApproval(ctx, request)
	if created == nil {
		logger.Error("запрос на согласование не создан")
		return false
	}

	n := i.approvalNotification(*created, notificationapimodels.ApprovalRequired)
	if i.conf.EmailEnabled && i.Email != nil && created.ApproverEmail != "" {
		to := notificationapimodels.Recipient{Name: created.ApproverName, Email: created.ApproverEmail}
		i.runner.Go(ctx, "email-approval-request", func(ctx context.Context) {
			i.Email.SendApprovalRequestEmail(ctx, n, to)
		})
	}
	if i.conf.TeamsEnabled && i.Teams != nil {
		i.runner.Go(ctx, "teams-approval-request", func(ctx context.Context) {
			i.Teams.SendApprovalNotification(ctx, n)
		})
	}
	if i.conf.InAppEnabled && i.InApp != nil {
		i.runner.Go(ctx, "in-app-approval-request", func(ctx context.Context) {
			i.InApp.Notify(ctx, created.ApproverID, models.InAppApprovalRequired, n.Link, created.Title, helpers.FormatDate(created.DueDate))
		})
	}
	logger.WithField("approval_id", created.ID).Info("создан запрос на согласование")
	return true
}

func (i *impl) ProcessApprovalDecision(ctx context.Context, approvalID uint, decision models.ApprovalStatus, comments string) bool {
	logger := log.
		WithField("approval_id", approvalID).
		WithField("decision", decision)
	if i.Approvals == nil {
		logger.Error("сервис согласований не инициализирован")
		return false
	}
	if decision != models.ApprovalApproved && decision != models.ApprovalRejected {
		logger.Warn("решение может быть только одобрением или отклонением")
		return false
	}
	current := i.Approvals.GetApproval(approvalID)
	if current == nil {
		logger.Warn("запрос на согласование не найден")
		return false
	}
	user, ok := authutils.UserFromContext(ctx)
	if !ok {
		logger.Warn("не удалось определить текущего пользователя")
		return false
	}

	var done bool
	if decision == models.ApprovalApproved {
		done = i.Approvals.Approve(ctx, approvalID, comments, user.Name, user.ID)
	} else {
		done = i.Approvals.Reject(ctx, approvalID, comments, user.Name, user.ID)
	}
	if !done {
		return false
	}

	decided := *current
	decided.Status = decision
	decided.DecisionByName = user.Name
	decided.Comments = comments
	n := i.approvalNotification(decided, notificationapimodels.ApprovalDecision)
	if i.conf.EmailEnabled && i.Email != nil && decided.RequestedByEmail != "" {
		to := notificationapimodels.Recipient{Name: decided.RequestedByName, Email: decided.RequestedByEmail}
		i.runner.Go(ctx, "email-approval-decision", func(ctx context.Context) {
			i.Email.SendApprovalDecisionEmail(ctx, n, to)
		})
	}
	if i.conf.TeamsEnabled && i.Teams != nil {
		i.runner.Go(ctx, "teams-approval-decision", func(ctx context.Context) {
			i.Teams.SendApprovalNotification(ctx, n)
		})
	}
	if i.conf.InAppEnabled && i.InApp != nil {
		i.runner.Go(ctx, "in-app-approval-decision", func(ctx context.Context) {
			i.InApp.Notify(ctx, decided.RequestedByID, models.InAppApprovalDecided, n.Link, decided.Title, decisionTitle(decision), user.Name)
		})
	}
	if decision == models.ApprovalApproved {
		i.onApprovalGranted(decided)
	}
	return true
}

// onApprovalGranted точка расширения для автоматических действий после одобрения
func (i *impl) onApprovalGranted(view approvalapimodels.ApprovalView) {
	log.
		WithField("approval_id", view.ID).
		WithField("approval_type", view.ApprovalType).
		WithField("related_item_id", view.RelatedItemID).
		WithField("related_item_type", view.RelatedItemType).
		Info("согласование одобрено")
}

func (i *impl) StartWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string) {
	log.
		WithField("process_type", kind).
		WithField("process_id", processID).
		Infof("%s: процесс запущен для %s", kind.Title(), employeeName)
	i.log(ctx, models.AuditWorkflowStarted, models.ProcessEntity(kind), processID, employeeName, nil)
}

func (i *impl) CompleteWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string) {
	log.
		WithField("process_type", kind).
		WithField("process_id", processID).
		Infof("%s: процесс завершён для %s", kind.Title(), employeeName)
	i.log(ctx, models.AuditWorkflowCompleted, models.ProcessEntity(kind), processID, employeeName, nil)
}

func (i *impl) StartOnboardingWorkflow(ctx context.Context, processID uint, employeeName string) {
	i.StartWorkflow(ctx, models.ProcessOnboarding, processID, employeeName)
}

func (i *impl) CompleteOnboardingWorkflow(ctx context.Context, processID uint, employeeName string) {
	i.CompleteWorkflow(ctx, models.ProcessOnboarding, processID, employeeName)
}

func (i *impl) Wait() {
	i.runner.Wait()
}

func (i *impl) lookupUser(id uint) *directoryapimodels.UserView {
	if i.Directory == nil || id == 0 {
		return nil
	}
	user, err := i.Directory.GetUser(id)
	if err != nil {
		log.WithError(err).WithField("user_id", id).Warn("не удалось получить пользователя из справочника")
		return nil
	}
	if user == nil {
		log.WithField("user_id", id).Warn("пользователь не найден в справочнике")
		return nil
	}
	return user
}

func (i *impl) employeeName(kind models.ProcessType, processID uint) string {
	process, err := i.ProcessStore.GetByID(kind, processID)
	if err != nil {
		log.WithError(err).WithField("process_id", processID).Warn("не удалось получить карточку процесса")
		return ""
	}
	if process == nil {
		return ""
	}
	return process.EmployeeName
}

func (i *impl) taskNotification(kind models.ProcessType, task dbmodels.JmlTask, employeeName string, notifyKind notificationapimodels.TaskNotificationKind) notificationapimodels.TaskNotification {
	return notificationapimodels.TaskNotification{
		Kind:          notifyKind,
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		Category:      task.Category,
		ProcessType:   kind,
		ProcessID:     task.ParentID,
		EmployeeName:  employeeName,
		AssigneeName:  task.AssigneeName,
		AssigneeEmail: task.AssigneeEmail,
		Priority:      models.NormalizeTaskPriority(task.Priority),
		DueDate:       task.DueDate,
		Notes:         task.Notes,
		Link:          kind.Link(i.conf.BaseURL, task.ParentID),
	}
}

func (i *impl) approvalNotification(view approvalapimodels.ApprovalView, kind notificationapimodels.ApprovalNotificationKind) notificationapimodels.ApprovalNotification {
	return notificationapimodels.ApprovalNotification{
		Kind:            kind,
		ApprovalID:      view.ID,
		Title:           view.Title,
		Description:     view.Description,
		ApprovalType:    view.ApprovalType,
		Priority:        view.Priority,
		Status:          view.Status,
		RequestedByName: view.RequestedByName,
		ApproverName:    view.ApproverName,
		DecisionByName:  view.DecisionByName,
		Comments:        view.Comments,
		DueDate:         view.DueDate,
		Link:            fmt.Sprintf("%s/approvals/%d", strings.TrimRight(i.conf.BaseURL, "/"), view.ID),
	}
}

func (i *impl) log(ctx context.Context, action models.AuditAction, entityType models.AuditEntityType, entityID uint, title string, details any) {
	if i.Audit == nil {
		return
	}
	i.Audit.Log(ctx, auditapimodels.Activity{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityTitle: title,
		Details:     details,
	})
}

func decisionTitle(status models.ApprovalStatus) string {
	if status == models.ApprovalApproved {
		return "одобрено"
	}
	return "отклонено"
}
