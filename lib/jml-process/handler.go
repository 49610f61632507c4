package jmlprocess

import (
	"context"

	"jml-lite/config"
	"jml-lite/db"
	audittrail "jml-lite/lib/audit-trail"
	jmlprocessstore "jml-lite/lib/jml-process/store"
	jmltaskstore "jml-lite/lib/jml-task/store"
	"jml-lite/lib/notification/teams"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/lib/utils/detached"
	"jml-lite/lib/workflow"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	notificationapimodels "jml-lite/models/api/notification"
	processapimodels "jml-lite/models/api/process"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Get(kind models.ProcessType, id uint) (*processapimodels.ProcessView, error)
	// Submit создаёт карточку процесса и задачи мастера
	Submit(ctx context.Context, kind models.ProcessType, data processapimodels.ProcessSubmission) (*processapimodels.ProcessView, error)
	Start(ctx context.Context, kind models.ProcessType, id uint) error
	Complete(ctx context.Context, kind models.ProcessType, id uint) error
	// Wait дожидается фоновых уведомлений
	Wait()
}

// Lifecycle отметки начала и завершения процесса
type Lifecycle interface {
	StartWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string)
	CompleteWorkflow(ctx context.Context, kind models.ProcessType, processID uint, employeeName string)
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(
		jmlprocessstore.NewInstance(db.DB),
		jmltaskstore.NewInstance(db.DB),
		teams.Instance,
		workflow.Instance,
		audittrail.Instance,
		*config.Conf.Notifications.TeamsEnabled,
		config.Conf.App.BaseUrl,
	)
}

func NewProvider(store jmlprocessstore.Provider, taskStore jmltaskstore.Provider, teamsSender teams.Provider,
	lifecycle Lifecycle, audit audittrail.Provider, teamsEnabled bool, baseURL string) Provider {
	return &impl{
		store:        store,
		taskStore:    taskStore,
		teams:        teamsSender,
		lifecycle:    lifecycle,
		audit:        audit,
		teamsEnabled: teamsEnabled,
		baseURL:      baseURL,
		runner:       detached.NewRunner(),
	}
}

type impl struct {
	store        jmlprocessstore.Provider
	taskStore    jmltaskstore.Provider
	teams        teams.Provider
	lifecycle    Lifecycle
	audit        audittrail.Provider
	teamsEnabled bool
	baseURL      string
	runner       *detached.Runner
}

func (i *impl) getLogger(kind models.ProcessType, id uint) *log.Entry {
	return log.
		WithField("process_type", kind).
		WithField("process_id", id)
}

func (i *impl) Get(kind models.ProcessType, id uint) (*processapimodels.ProcessView, error) {
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

func (i *impl) Submit(ctx context.Context, kind models.ProcessType, data processapimodels.ProcessSubmission) (*processapimodels.ProcessView, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	rec := dbmodels.JmlProcess{
		EmployeeName:     data.EmployeeName,
		EmployeeID:       data.EmployeeID,
		EmployeeEmail:    data.EmployeeEmail,
		JobTitle:         data.JobTitle,
		Department:       data.Department,
		TargetDepartment: data.TargetDepartment,
		ManagerID:        data.ManagerID,
		ManagerName:      data.ManagerName,
		ManagerEmail:     data.ManagerEmail,
		EffectiveDate:    data.EffectiveDate,
		Status:           models.ProcessNotStarted,
	}
	if user, ok := authutils.UserFromContext(ctx); ok {
		rec.CreatedByID = user.ID
		rec.CreatedByName = user.Name
	}
	id, err := i.store.Create(kind, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	logger := i.getLogger(kind, id)

	tasks := make([]dbmodels.JmlTask, 0, len(data.Tasks))
	for k, task := range data.Tasks {
		tasks = append(tasks, dbmodels.JmlTask{
			ParentID:      id,
			Title:         task.Title,
			Category:      task.Category,
			Status:        models.TaskPending,
			Priority:      models.NormalizeTaskPriority(task.Priority),
			DueDate:       task.DueDate,
			AssigneeID:    task.AssigneeID,
			AssigneeName:  task.AssigneeName,
			AssigneeEmail: task.AssigneeEmail,
			Notes:         task.Notes,
			SortOrder:     k,
		})
	}
	err = i.taskStore.CreateBatch(kind, tasks)
	if err != nil {
		return nil, errors.Wrapf(err, "карточка %v создана, но задачи не сохранены", id)
	}
	logger.WithField("task_count", len(tasks)).Info("создана карточка процесса")

	i.log(ctx, kind, rec, models.AuditProcessCreated, map[string]any{"task_count": len(tasks)})
	i.notify(ctx, kind, rec, notificationapimodels.ProcessStarted, len(tasks))
	view := rec.ToModelView(kind)
	return &view, nil
}

func (i *impl) Start(ctx context.Context, kind models.ProcessType, id uint) error {
	rec, err := i.load(kind, id)
	if err != nil {
		return err
	}
	if rec.Status == models.ProcessNotStarted {
		err = i.store.Update(kind, id, map[string]interface{}{"status": models.ProcessInProgress})
		if err != nil {
			return err
		}
	}
	if i.lifecycle != nil {
		i.lifecycle.StartWorkflow(ctx, kind, id, rec.EmployeeName)
	}
	return nil
}

func (i *impl) Complete(ctx context.Context, kind models.ProcessType, id uint) error {
	rec, err := i.load(kind, id)
	if err != nil {
		return err
	}
	if rec.Status == models.ProcessCancelled {
		return errors.New("отменённый процесс нельзя завершить")
	}
	err = i.store.Update(kind, id, map[string]interface{}{
		"status":   models.ProcessCompleted,
		"progress": 100,
	})
	if err != nil {
		return err
	}
	if i.lifecycle != nil {
		i.lifecycle.CompleteWorkflow(ctx, kind, id, rec.EmployeeName)
	}
	i.notify(ctx, kind, *rec, notificationapimodels.ProcessCompleted, 0)
	return nil
}

func (i *impl) Wait() {
	i.runner.Wait()
}

func (i *impl) load(kind models.ProcessType, id uint) (*dbmodels.JmlProcess, error) {
	rec, err := i.store.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Errorf("карточка процесса %v (%v) не найдена", id, kind)
	}
	return rec, nil
}

func (i *impl) notify(ctx context.Context, kind models.ProcessType, rec dbmodels.JmlProcess, notifyKind notificationapimodels.ProcessNotificationKind, taskCount int) {
	if !i.teamsEnabled || i.teams == nil {
		return
	}
	n := notificationapimodels.ProcessNotification{
		Kind:             notifyKind,
		ProcessType:      kind,
		ProcessID:        rec.ID,
		EmployeeName:     rec.EmployeeName,
		JobTitle:         rec.JobTitle,
		Department:       rec.Department,
		TargetDepartment: rec.TargetDepartment,
		ManagerName:      rec.ManagerName,
		EffectiveDate:    rec.EffectiveDate,
		TaskCount:        taskCount,
		Link:             kind.Link(i.baseURL, rec.ID),
	}
	i.runner.Go(ctx, "teams-process", func(ctx context.Context) {
		i.teams.SendProcessNotification(ctx, n)
	})
}

func (i *impl) log(ctx context.Context, kind models.ProcessType, rec dbmodels.JmlProcess, action models.AuditAction, details any) {
	if i.audit == nil {
		return
	}
	i.audit.Log(ctx, auditapimodels.Activity{
		Action:      action,
		EntityType:  models.ProcessEntity(kind),
		EntityID:    rec.ID,
		EntityTitle: rec.EmployeeName,
		Details:     details,
	})
}
