package expireworker

import (
	"context"
	"time"

	"jml-lite/config"
	"jml-lite/lib/approval"
	baseworker "jml-lite/lib/utils/base-worker"
)

func StartWorker(ctx context.Context) {
	interval := time.Duration(config.Conf.Workflow.ApprovalExpireInterval) * time.Minute
	i := newWorker(approval.Instance, interval)
	go i.Run(ctx, i.handle)
}

func newWorker(approvals approval.Provider, interval time.Duration) *impl {
	if interval <= 0 {
		interval = time.Hour
	}
	return &impl{
		BaseImpl:  *baseworker.NewInstance("ApprovalExpireWorker", 30*time.Second, interval),
		approvals: approvals,
	}
}

type impl struct {
	baseworker.BaseImpl
	approvals approval.Provider
}

// handle переводит просроченные ожидающие согласования в Expired
func (i impl) handle(ctx context.Context) (int, error) {
	return i.approvals.ExpireOverdueApprovals(ctx), nil
}
