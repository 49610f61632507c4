package expireworker

import (
	"context"
	"testing"
	"time"

	approvalhandler "jml-lite/lib/approval"

	"github.com/stretchr/testify/require"
)

type fakeApprovals struct {
	approvalhandler.Provider
	expired int
}

func (f *fakeApprovals) ExpireOverdueApprovals(ctx context.Context) int {
	f.expired++
	return 4
}

func TestHandle(t *testing.T) {
	t.Run(`expire pass reports processed count`, func(t *testing.T) {
		approvals := &fakeApprovals{}
		i := newWorker(approvals, 0)
		processed, err := i.handle(context.Background())
		require.Nil(t, err)
		require.Equal(t, 4, processed)
		require.Equal(t, 1, approvals.expired)
	})

	t.Run(`run stops with context`, func(t *testing.T) {
		approvals := &fakeApprovals{}
		i := newWorker(approvals, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		i.Run(ctx, i.handle)
		require.Equal(t, 0, approvals.expired)
	})
}
