package services

import (
	"context"

	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/models/entities"
)

// AlertStore is the persistence surface the registry needs. Satisfied by
// repositories.AlertRepository.
type AlertStore interface {
	FindEnabledByFlightNumber(ctx context.Context, q repositories.Queryer, flightNumber string) (*entities.FlightAlert, error)
	FindByFlightID(ctx context.Context, q repositories.Queryer, flightID string) (*entities.FlightAlert, error)
	Insert(ctx context.Context, q repositories.Queryer, alert *entities.FlightAlert) error
	Delete(ctx context.Context, q repositories.Queryer, alertID int64) error
	ListEnabled(ctx context.Context, q repositories.Queryer) ([]entities.FlightAlert, error)
}

// AlertSource is the upstream subset the registry needs. Satisfied by
// providers.FlightAwareClient.
type AlertSource interface {
	SetAlert(ctx context.Context, ident string) (int64, error)
	DeleteAlert(ctx context.Context, alertID int64) error
	GetAlerts(ctx context.Context) ([]dtos.FAAlert, error)
}

// AlertRegistry keeps at most one upstream alert subscription live per
// flight number, shared by every tracker of that flight.
type AlertRegistry struct {
	store  AlertStore
	source AlertSource
}

func NewAlertRegistry(store AlertStore, source AlertSource) *AlertRegistry {
	return &AlertRegistry{store: store, source: source}
}

// EnsureAlert guarantees an enabled subscription covers the flight number,
// reusing an existing one before registering upstream. Runs inside the
// caller's transaction so a failed track never leaks a local row.
func (r *AlertRegistry) EnsureAlert(ctx context.Context, q repositories.Queryer, flightID, flightNumber string) (*entities.FlightAlert, error) {
	existing, err := r.store.FindEnabledByFlightNumber(ctx, q, flightNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	alertID, err := r.source.SetAlert(ctx, flightNumber)
	if err != nil {
		return nil, err
	}

	alert := &entities.FlightAlert{
		AlertID:      alertID,
		FlightID:     flightID,
		FlightNumber: flightNumber,
		Enabled:      true,
	}
	if err := r.store.Insert(ctx, q, alert); err != nil {
		// The upstream subscription exists but we can't record it; drop it
		// so the orphan audit doesn't have to.
		if delErr := r.source.DeleteAlert(ctx, alertID); delErr != nil {
			logging.Error("Failed to roll back upstream alert",
				"alert_id", alertID, "error", delErr.Error())
		}
		return nil, err
	}

	logging.Info("Registered flight alert",
		"alert_id", alertID, "flight_number", flightNumber)
	return alert, nil
}

// ReleaseAlert tears down the subscription for a flight once its last
// tracker leaves. The local row goes first, inside the caller's
// transaction; the upstream delete is best-effort and a failure only
// leaves an orphan for the audit sweep.
func (r *AlertRegistry) ReleaseAlert(ctx context.Context, q repositories.Queryer, flightID string) error {
	alert, err := r.store.FindByFlightID(ctx, q, flightID)
	if err != nil {
		return err
	}
	if alert == nil {
		return nil
	}

	if err := r.store.Delete(ctx, q, alert.AlertID); err != nil {
		return err
	}

	if err := r.source.DeleteAlert(ctx, alert.AlertID); err != nil {
		logging.Warn("Failed to delete upstream alert, orphan audit will retry",
			"alert_id", alert.AlertID, "error", err.Error())
	}
	return nil
}

// AuditOrphans deletes upstream alerts that have no enabled local row.
// Returns the number of orphans removed; per-alert failures are logged and
// skipped so one bad delete doesn't stall the sweep.
func (r *AlertRegistry) AuditOrphans(ctx context.Context, q repositories.Queryer) (int, error) {
	upstream, err := r.source.GetAlerts(ctx)
	if err != nil {
		return 0, err
	}
	local, err := r.store.ListEnabled(ctx, q)
	if err != nil {
		return 0, err
	}

	known := make(map[int64]bool, len(local))
	for _, alert := range local {
		known[alert.AlertID] = true
	}

	removed := 0
	for _, alert := range upstream {
		if known[alert.AlertID] {
			continue
		}
		if err := r.source.DeleteAlert(ctx, alert.AlertID); err != nil {
			logging.Warn("Failed to delete orphaned alert",
				"alert_id", alert.AlertID, "error", err.Error())
			continue
		}
		removed++
	}

	if removed > 0 {
		logging.Info("Removed orphaned upstream alerts", "count", removed)
	}
	return removed, nil
}
