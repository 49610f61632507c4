// Package detached запуск фоновых отправок, которые не должны задерживать основной запрос
package detached

import (
	"context"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Runner struct {
	mu sync.Mutex
	// после Wait новые задачи выполняются синхронно, счётчик wg больше не растёт
	closed bool
	wg     sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Go запускает fn в отдельной горутине. Отмена ctx запроса на fn не влияет,
// значения контекста (текущий пользователь) сохраняются.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	bgCtx := context.WithoutCancel(ctx)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		run(bgCtx, name, fn)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()
	go func() {
		defer r.wg.Done()
		run(bgCtx, name, fn)
	}()
}

// Wait закрывает приём фоновых задач и ожидает завершения запущенных
func (r *Runner) Wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

func run(ctx context.Context, name string, fn func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			log.
				WithField("job", name).
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic: (%v)", rec)
		}
	}()
	fn(ctx)
}
