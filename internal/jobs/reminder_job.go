package jobs

import (
	"context"
	"time"

	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/services"
)

// ReminderJob delivers due leave-soon/leave-now reminders. The at-most-once
// guarantee lives in the reminder service's guarded sent flip; this job just
// drives it on a schedule.
type ReminderJob struct {
	reminders  *services.ReminderService
	metricsReg *metrics.MetricsRegistry
}

func NewReminderJob(reminders *services.ReminderService, metricsReg *metrics.MetricsRegistry) *ReminderJob {
	return &ReminderJob{reminders: reminders, metricsReg: metricsReg}
}

func (j *ReminderJob) Run(ctx context.Context) error {
	start := time.Now()

	sent, err := j.reminders.SendDue(ctx)
	if err != nil {
		logging.Error("Reminder sweep failed", "error", err.Error())
		return err
	}

	j.metricsReg.SweepDuration.WithLabelValues("reminders").Observe(time.Since(start).Seconds())
	j.metricsReg.RemindersSentTotal.Add(float64(sent))
	if sent > 0 {
		logging.Info("Reminder sweep completed", "sent", sent)
	}
	return nil
}
