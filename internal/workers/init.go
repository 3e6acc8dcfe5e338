package workers

import (
	"context"

	"just-landed/tracker/internal/api"
)

type WorkersContainer struct {
	DelayQueue *DelayQueueWorker
}

func InitWorkers(ctx context.Context, deps *api.Dependencies) *WorkersContainer {
	worker := NewDelayQueueWorker(
		deps.Services.DelayQueue,
		deps.Services.Tracking,
		deps.Services.Reconciler,
	)

	go worker.Start(ctx)

	return &WorkersContainer{
		DelayQueue: worker,
	}
}
