package baseworker

import (
	"context"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
)

// JobFunc один проход задачи; processed попадает в лог
type JobFunc func(ctx context.Context) (processed int, err error)

type BaseImpl struct {
	WorkerName    string
	firstRunDelay time.Duration
	runInterval   time.Duration
}

func NewInstance(workerName string, firstRunDelay, runInterval time.Duration) *BaseImpl {
	return &BaseImpl{
		WorkerName:    workerName,
		firstRunDelay: firstRunDelay,
		runInterval:   runInterval,
	}
}

func (i BaseImpl) GetLogger() *log.Entry {
	return log.WithField("worker_name", i.WorkerName)
}

// Run крутит задачу до отмены ctx. Паника в проходе не останавливает воркер
func (i BaseImpl) Run(ctx context.Context, jobFunc JobFunc) {
	logger := i.GetLogger()
	period := i.firstRunDelay
	for {
		select {
		case <-ctx.Done():
			logger.Info("Задача остановлена")
			return
		case <-time.After(period):
			i.RunOnce(ctx, jobFunc)
		}
		period = i.runInterval
	}
}

func (i BaseImpl) RunOnce(ctx context.Context, jobFunc JobFunc) {
	logger := i.GetLogger()
	defer func() {
		if r := recover(); r != nil {
			logger.
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic: (%v)", r)
		}
	}()
	started := time.Now()
	processed, err := jobFunc(ctx)
	logger = logger.
		WithField("processed", processed).
		WithField("duration", time.Since(started).String())
	if err != nil {
		logger.WithError(err).Error("Задача выполнена с ошибкой")
		return
	}
	logger.Info("Задача выполнена")
}
