package initializers

import (
	"context"

	"jml-lite/config"
	"jml-lite/fiberlog"
	"jml-lite/lib/approval"
	expireworker "jml-lite/lib/approval/expire-worker"
	audittrail "jml-lite/lib/audit-trail"
	"jml-lite/lib/directory"
	jmlprocess "jml-lite/lib/jml-process"
	jmltask "jml-lite/lib/jml-task"
	"jml-lite/lib/notification/graph"
	"jml-lite/lib/notification/inapp"
	"jml-lite/lib/notification/push"
	"jml-lite/lib/notification/teams"
	taskreminder "jml-lite/lib/task-reminder"
	reminderworker "jml-lite/lib/task-reminder/reminder-worker"
	initchecker "jml-lite/lib/utils/init-checker"
	"jml-lite/lib/workflow"

	log "github.com/sirupsen/logrus"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	audittrail.NewHandler()
	directory.NewHandler()
	approval.NewHandler()
	teams.NewHandler()
	graph.NewHandler(InitEmailTransport())
	push.NewHandler()
	inapp.NewHandler()
	jmltask.NewHandler()
	workflow.NewHandler()
	jmlprocess.NewHandler()
	taskreminder.NewHandler()
	initchecker.CheckInit(
		"audittrail", audittrail.Instance,
		"directory", directory.Instance,
		"approval", approval.Instance,
		"teams", teams.Instance,
		"graph", graph.Instance,
		"push", push.Instance,
		"inapp", inapp.Instance,
		"jmltask", jmltask.Instance,
		"workflow", workflow.Instance,
		"jmlprocess", jmlprocess.Instance,
		"taskreminder", taskreminder.Instance,
	)
	initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// Перевод просроченных согласований в Expired
	expireworker.StartWorker(ctx)

	// Ежедневные напоминания по просроченным задачам и задачам на сегодня
	if err := reminderworker.StartWorker(ctx); err != nil {
		log.WithError(err).Error("задача напоминаний не запущена")
	}
}

// Shutdown дожидается фоновых уведомлений и записей журнала
func Shutdown() {
	if workflow.Instance != nil {
		workflow.Instance.Wait()
	}
	if jmlprocess.Instance != nil {
		jmlprocess.Instance.Wait()
	}
	if audittrail.Instance != nil {
		audittrail.Instance.Wait()
	}
}
