// Package lock блокировка по ключу внутри процесса, чтобы рассылки не запускались параллельно
package lock

import (
	"context"
	"sync"
	"time"
)

var lockMap sync.Map

// TryRun выполняет safeCode, только если ключ свободен
func TryRun(key string, safeCode func() error) (success bool, err error) {
	if _, loaded := lockMap.LoadOrStore(key, true); loaded {
		return false, nil
	}
	defer lockMap.Delete(key)
	return true, safeCode()
}

// WithDelay ждёт освобождения ключа не дольше wait
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	timeout := time.After(wait)
	for {
		if _, loaded := lockMap.LoadOrStore(key, true); !loaded {
			break
		}
		select {
		case <-timeout:
			return false, nil
		case <-ctx.Done():
			return false, nil
		case <-time.After(50 * time.Millisecond):
		}
	}
	defer lockMap.Delete(key)
	return true, safeCode()
}
