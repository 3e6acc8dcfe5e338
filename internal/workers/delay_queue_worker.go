package workers

import (
	"context"
	"encoding/json"
	"time"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/services"
)

const (
	pollInterval = 5 * time.Second
	claimBatch   = 25
)

// DelayQueueWorker drains the Redis delay queue: deferred re-track
// checkpoints and delayed alert callbacks. Claims are single-attempt; a
// task that fails is logged and dropped, because both task kinds are
// re-issued by their producers (checkpoints on the next track, callbacks by
// the next upstream event).
type DelayQueueWorker struct {
	queue      *common.RedisDelayQueue
	tracking   *services.TrackingService
	reconciler *services.AlertReconciler
}

func NewDelayQueueWorker(
	queue *common.RedisDelayQueue,
	tracking *services.TrackingService,
	reconciler *services.AlertReconciler,
) *DelayQueueWorker {
	return &DelayQueueWorker{
		queue:      queue,
		tracking:   tracking,
		reconciler: reconciler,
	}
}

// Start polls until the context is canceled.
func (w *DelayQueueWorker) Start(ctx context.Context) {
	logging.Info("Delay queue worker started", "poll_interval", pollInterval.String())

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Delay queue worker stopping")
			return
		case <-ticker.C:
			w.drainDue(ctx)
		}
	}
}

func (w *DelayQueueWorker) drainDue(ctx context.Context) {
	tasks, err := w.queue.ClaimDue(ctx, time.Now(), claimBatch)
	if err != nil {
		logging.Warn("Failed to claim due tasks", "error", err.Error())
		return
	}

	for _, task := range tasks {
		if err := w.dispatch(ctx, task); err != nil {
			logging.Error("Delayed task failed",
				"task_id", task.ID, "kind", string(task.Kind), "error", err.Error())
		}
	}
}

func (w *DelayQueueWorker) dispatch(ctx context.Context, task common.DelayTask) error {
	switch task.Kind {
	case constants.TaskRetrack:
		var payload services.RetrackTask
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return err
		}
		return w.tracking.RefreshTracked(ctx, payload.FlightID)

	case constants.TaskProcessAlert:
		var cb dtos.FAAlertCallback
		if err := json.Unmarshal(task.Payload, &cb); err != nil {
			return err
		}
		return w.reconciler.Process(ctx, &cb)

	default:
		logging.Warn("Unknown delayed task kind", "kind", string(task.Kind))
		return nil
	}
}
