package taskreminder

import (
	"context"
	"time"

	"jml-lite/config"
	"jml-lite/db"
	jmlprocessstore "jml-lite/lib/jml-process/store"
	jmltaskstore "jml-lite/lib/jml-task/store"
	"jml-lite/lib/notification/teams"
	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	notificationapimodels "jml-lite/models/api/notification"
	taskapimodels "jml-lite/models/api/task"

	log "github.com/sirupsen/logrus"
)

// dueSoonDays окно [сегодня, сегодня+3) для статистики
const dueSoonDays = 3

type Provider interface {
	GetOverdueTasks(ctx context.Context) []taskapimodels.TaskWithEmployee
	// GetTasksInDateRange открытые задачи со сроком в [start, end)
	GetTasksInDateRange(ctx context.Context, start, end time.Time) []taskapimodels.TaskWithEmployee
	GetTasksDueToday(ctx context.Context) []taskapimodels.TaskWithEmployee
	SendOverdueReminders(ctx context.Context) []taskapimodels.ReminderResult
	SendDueTodayReminders(ctx context.Context) []taskapimodels.ReminderResult
	GetTaskStats(ctx context.Context) taskapimodels.TaskStats
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(
		jmltaskstore.NewInstance(db.DB),
		jmlprocessstore.NewInstance(db.DB),
		teams.Instance,
		config.Conf.App.BaseUrl,
		time.Now,
	)
}

func NewProvider(taskStore jmltaskstore.Provider, processStore jmlprocessstore.Provider, teamsSender teams.Provider, baseURL string, now func() time.Time) Provider {
	return impl{
		taskStore:    taskStore,
		processStore: processStore,
		teams:        teamsSender,
		baseURL:      baseURL,
		now:          now,
	}
}

type impl struct {
	taskStore    jmltaskstore.Provider
	processStore jmlprocessstore.Provider
	teams        teams.Provider
	baseURL      string
	now          func() time.Time
}

func (i impl) today() time.Time {
	return helpers.StartOfDay(i.now())
}

func (i impl) GetOverdueTasks(ctx context.Context) []taskapimodels.TaskWithEmployee {
	return i.collect(ctx, time.Time{}, i.today())
}

func (i impl) GetTasksInDateRange(ctx context.Context, start, end time.Time) []taskapimodels.TaskWithEmployee {
	return i.collect(ctx, start, end)
}

func (i impl) GetTasksDueToday(ctx context.Context) []taskapimodels.TaskWithEmployee {
	today := i.today()
	return i.collect(ctx, today, helpers.AddDays(today, 1))
}

func (i impl) SendOverdueReminders(ctx context.Context) []taskapimodels.ReminderResult {
	return i.remind(ctx, i.GetOverdueTasks(ctx), notificationapimodels.TaskOverdue)
}

func (i impl) SendDueTodayReminders(ctx context.Context) []taskapimodels.ReminderResult {
	return i.remind(ctx, i.GetTasksDueToday(ctx), notificationapimodels.TaskDueToday)
}

// GetTaskStats total = overdue + dueSoon; задачи на сегодня уже входят в dueSoon
func (i impl) GetTaskStats(ctx context.Context) taskapimodels.TaskStats {
	today := i.today()
	overdue := i.GetOverdueTasks(ctx)
	dueToday := i.GetTasksDueToday(ctx)
	dueSoon := i.GetTasksInDateRange(ctx, today, helpers.AddDays(today, dueSoonDays))
	return taskapimodels.TaskStats{
		Overdue:  len(overdue),
		DueToday: len(dueToday),
		DueSoon:  len(dueSoon),
		Total:    len(overdue) + len(dueSoon),
	}
}

// collect объединяет задачи трёх типов процессов, задача без родительской карточки отбрасывается
func (i impl) collect(ctx context.Context, from, to time.Time) []taskapimodels.TaskWithEmployee {
	result := []taskapimodels.TaskWithEmployee{}
	for _, kind := range models.ProcessTypes {
		if helpers.IsContextDone(ctx) {
			return result
		}
		logger := log.WithField("process_type", kind)
		tasks, err := i.taskStore.ListDue(kind, from, to, models.TaskOpenStatuses)
		if err != nil {
			logger.WithError(err).Error("ошибка получения задач")
			continue
		}
		for _, task := range tasks {
			process, err := i.processStore.GetByID(kind, task.ParentID)
			if err != nil {
				logger.WithError(err).WithField("task_id", task.ID).Warn("не удалось получить карточку процесса задачи")
				continue
			}
			if process == nil {
				continue
			}
			result = append(result, taskapimodels.TaskWithEmployee{
				TaskView:     task.ToModelView(kind),
				EmployeeName: process.EmployeeName,
				EmployeeID:   process.EmployeeID,
			})
		}
	}
	return result
}

func (i impl) remind(ctx context.Context, tasks []taskapimodels.TaskWithEmployee, kind notificationapimodels.TaskNotificationKind) []taskapimodels.ReminderResult {
	results := make([]taskapimodels.ReminderResult, 0, len(tasks))
	today := i.today()
	for _, task := range tasks {
		result := taskapimodels.ReminderResult{Task: task}
		if i.teams == nil {
			result.Error = teams.ErrDisabled.Error()
			results = append(results, result)
			continue
		}
		n := notificationapimodels.TaskNotification{
			Kind:          kind,
			TaskID:        task.ID,
			TaskTitle:     task.Title,
			Category:      task.Category,
			ProcessType:   task.ProcessType,
			ProcessID:     task.ParentID,
			EmployeeName:  task.EmployeeName,
			AssigneeName:  task.AssigneeName,
			AssigneeEmail: task.AssigneeEmail,
			Priority:      task.Priority,
			DueDate:       task.DueDate,
			Notes:         task.Notes,
			Link:          task.ProcessType.Link(i.baseURL, task.ParentID),
		}
		if task.DueDate != nil {
			n.DaysOverdue = helpers.DaysBetween(task.DueDate.In(today.Location()), today)
		}
		err := i.teams.SendTaskReminder(ctx, n)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Sent = true
		}
		results = append(results, result)
	}
	log.
		WithField("kind", kind).
		WithField("total", len(results)).
		WithField("sent", countSent(results)).
		Info("напоминания по задачам отправлены")
	return results
}

func countSent(results []taskapimodels.ReminderResult) int {
	count := 0
	for _, r := range results {
		if r.Sent {
			count++
		}
	}
	return count
}
