package baseworker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBaseWorker(t *testing.T) {
	t.Run(`RunOnce recovers panic`, func(t *testing.T) {
		w := NewInstance("test", 0, time.Millisecond)
		require.NotPanics(t, func() {
			w.RunOnce(context.Background(), func(ctx context.Context) (int, error) {
				panic("boom")
			})
		})
	})

	t.Run(`Run stops on cancel`, func(t *testing.T) {
		w := NewInstance("test", 0, time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		var calls int32
		done := make(chan struct{})
		go func() {
			w.Run(ctx, func(ctx context.Context) (int, error) {
				if atomic.AddInt32(&calls, 1) == 3 {
					cancel()
				}
				return 0, errors.New("ошибка прохода")
			})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("воркер не остановился")
		}
		require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	})
}
