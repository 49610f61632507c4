package detached

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestRunner(t *testing.T) {
	t.Run(`cancelled parent does not cancel job`, func(t *testing.T) {
		r := NewRunner()
		ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "user"))
		cancel()
		var gotErr error
		var gotValue any
		r.Go(ctx, "test", func(ctx context.Context) {
			gotErr = ctx.Err()
			gotValue = ctx.Value(ctxKey{})
		})
		r.Wait()
		require.Nil(t, gotErr)
		require.Equal(t, "user", gotValue)
	})

	t.Run(`panic is recovered`, func(t *testing.T) {
		r := NewRunner()
		var counter int32
		r.Go(context.Background(), "panic", func(ctx context.Context) {
			panic("boom")
		})
		r.Go(context.Background(), "ok", func(ctx context.Context) {
			atomic.AddInt32(&counter, 1)
		})
		r.Wait()
		require.Equal(t, int32(1), atomic.LoadInt32(&counter))
	})

	t.Run(`job started after Wait runs inline`, func(t *testing.T) {
		r := NewRunner()
		r.Wait()
		done := false
		r.Go(context.Background(), "late", func(ctx context.Context) {
			done = true
		})
		require.True(t, done)
	})

	t.Run(`jobs spawned by running jobs during Wait are not lost`, func(t *testing.T) {
		r := NewRunner()
		var counter int32
		started := make(chan struct{})
		release := make(chan struct{})
		r.Go(context.Background(), "parent", func(ctx context.Context) {
			close(started)
			<-release
			r.Go(ctx, "child", func(ctx context.Context) {
				atomic.AddInt32(&counter, 1)
			})
		})
		<-started

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Wait()
		}()
		close(release)
		wg.Wait()
		r.Wait()
		require.Equal(t, int32(1), atomic.LoadInt32(&counter))
	})
}
