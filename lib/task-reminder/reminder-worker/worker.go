package reminderworker

import (
	"context"

	"jml-lite/config"
	taskreminder "jml-lite/lib/task-reminder"
	"jml-lite/lib/utils/lock"
	"jml-lite/lib/workflow"
	taskapimodels "jml-lite/models/api/task"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const lockKey = "task-reminder-sweep"

// StartWorker запускает ежедневную рассылку напоминаний по расписанию ReminderCron
func StartWorker(ctx context.Context) error {
	i := &impl{
		orchestrator: workflow.Instance,
		reminders:    taskreminder.Instance,
	}
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{})))
	_, err := c.AddFunc(config.Conf.Workflow.ReminderCron, func() {
		i.sweep(ctx)
	})
	if err != nil {
		return errors.Wrapf(err, "некорректное расписание напоминаний: %v", config.Conf.Workflow.ReminderCron)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.WithField("worker_name", "ReminderWorker").Info("Задача остановлена")
	}()
	return nil
}

type impl struct {
	orchestrator workflow.Provider
	reminders    taskreminder.Provider
}

type sweepResult struct {
	emails        int
	teamsOverdue  int
	teamsDueToday int
}

// sweep один проход; параллельный запуск пропускается
func (i impl) sweep(ctx context.Context) (result sweepResult, started bool) {
	logger := log.WithField("worker_name", "ReminderWorker")
	started, _ = lock.TryRun(lockKey, func() error {
		if i.orchestrator != nil {
			result.emails = i.orchestrator.SendOverdueReminders(ctx)
		}
		if i.reminders != nil {
			result.teamsOverdue = countSent(i.reminders.SendOverdueReminders(ctx))
			result.teamsDueToday = countSent(i.reminders.SendDueTodayReminders(ctx))
		}
		return nil
	})
	if !started {
		logger.Warn("предыдущая рассылка напоминаний ещё не завершена")
		return result, false
	}
	logger.
		WithField("emails", result.emails).
		WithField("teams_overdue", result.teamsOverdue).
		WithField("teams_due_today", result.teamsDueToday).
		Info("Задача выполнена")
	return result, true
}

func countSent(list []taskapimodels.ReminderResult) int {
	count := 0
	for _, item := range list {
		if item.Sent {
			count++
		}
	}
	return count
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithField("worker_name", "ReminderWorker").Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithField("worker_name", "ReminderWorker").WithError(err).Error(msg)
}
