package jobs

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/services"
)

// AlertAuditJob reconciles upstream alert subscriptions against the local
// registry and deletes orphans, which otherwise bill forever.
type AlertAuditJob struct {
	db         *sqlx.DB
	registry   *services.AlertRegistry
	metricsReg *metrics.MetricsRegistry
}

func NewAlertAuditJob(db *sqlx.DB, registry *services.AlertRegistry, metricsReg *metrics.MetricsRegistry) *AlertAuditJob {
	return &AlertAuditJob{db: db, registry: registry, metricsReg: metricsReg}
}

func (j *AlertAuditJob) Run(ctx context.Context) error {
	start := time.Now()

	removed, err := j.registry.AuditOrphans(ctx, j.db)
	if err != nil {
		logging.Error("Alert audit failed", "error", err.Error())
		return err
	}

	j.metricsReg.SweepDuration.WithLabelValues("alert_audit").Observe(time.Since(start).Seconds())
	logging.Info("Alert audit completed", "orphans_removed", removed)
	return nil
}
