package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"just-landed/tracker/internal/api"
	"just-landed/tracker/internal/db"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
)

// JobsContainer holds the scheduled sweeps for manual triggering and tests.
type JobsContainer struct {
	Cron       *cron.Cron
	Reminders  *ReminderJob
	StaleSweep *StaleFlightJob
	AlertAudit *AlertAuditJob
}

// InitializeJobs wires the sweeps onto a cron schedule and starts it.
// Reminders run every minute, the stale sweep every half hour, the alert
// audit daily.
func InitializeJobs(ctx context.Context, deps *api.Dependencies, metricsReg *metrics.MetricsRegistry) *JobsContainer {
	container := &JobsContainer{
		Reminders:  NewReminderJob(deps.Services.Reminders, metricsReg),
		StaleSweep: NewStaleFlightJob(db.DB, deps.Repo.Tracked, deps.Services.FlightData, deps.Services.Tracking, metricsReg),
		AlertAudit: NewAlertAuditJob(db.DB, deps.Services.Registry, metricsReg),
	}

	c := cron.New()

	mustAdd := func(spec string, name string, run func(context.Context) error) {
		_, err := c.AddFunc(spec, func() {
			if err := run(ctx); err != nil {
				logging.Error("Scheduled job failed", "job", name, "error", err.Error())
			}
		})
		if err != nil {
			logging.Fatal("Failed to schedule job", "job", name, "error", err.Error())
		}
	}

	mustAdd("* * * * *", "reminders", container.Reminders.Run)
	mustAdd("*/30 * * * *", "stale_flights", container.StaleSweep.Run)
	mustAdd("15 4 * * *", "alert_audit", container.AlertAudit.Run)

	c.Start()
	container.Cron = c

	logging.Info("Scheduled jobs started",
		"jobs", []string{"reminders", "stale_flights", "alert_audit"})
	return container
}
