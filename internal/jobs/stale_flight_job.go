package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/services"
)

// A flight this far past its stored arrival is expired without wasting an
// upstream call to double-check.
const certainlyOldAfter = 24 * time.Hour

// StaleFlightJob sweeps the ledger for flights nobody should still be
// tracking: landed long ago, or quietly dropped by upstream. Flights that
// look stale by their stored snapshot are verified upstream first so a
// merely-unrefreshed flight isn't torn down.
type StaleFlightJob struct {
	db         *sqlx.DB
	tracked    *repositories.TrackedFlightRepository
	flightData services.FlightFetcher
	tracking   *services.TrackingService
	metricsReg *metrics.MetricsRegistry
	now        func() time.Time
}

func NewStaleFlightJob(
	db *sqlx.DB,
	tracked *repositories.TrackedFlightRepository,
	flightData services.FlightFetcher,
	tracking *services.TrackingService,
	metricsReg *metrics.MetricsRegistry,
) *StaleFlightJob {
	return &StaleFlightJob{
		db:         db,
		tracked:    tracked,
		flightData: flightData,
		tracking:   tracking,
		metricsReg: metricsReg,
		now:        time.Now,
	}
}

// Run sweeps once. One bad flight never stalls the rest of the sweep.
func (j *StaleFlightJob) Run(ctx context.Context) error {
	start := j.now()

	flights, err := j.tracked.ListAll(ctx, j.db)
	if err != nil {
		logging.Error("Stale sweep: failed to list tracked flights", "error", err.Error())
		return err
	}

	expired := 0
	for _, tf := range flights {
		swept, err := j.sweepOne(ctx, tf.FlightID, tf.FlightData)
		if err != nil {
			logging.Warn("Stale sweep: skipping flight",
				"flight_id", tf.FlightID, "error", err.Error())
			continue
		}
		if swept {
			expired++
		}
	}

	j.metricsReg.SweepDuration.WithLabelValues("stale_flights").Observe(time.Since(start).Seconds())
	logging.Info("Stale flight sweep completed",
		"checked", len(flights), "expired", expired,
		"duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}

func (j *StaleFlightJob) sweepOne(ctx context.Context, flightID string, data []byte) (bool, error) {
	var f models.Flight
	if err := json.Unmarshal(data, &f); err != nil {
		// Unreadable snapshot: the flight can never notify anyone again.
		return true, j.tracking.Expire(ctx, flightID)
	}

	now := j.now()
	if !f.IsOld(now) {
		return false, nil
	}

	arrival := f.ActualArrivalTime
	if arrival <= 0 {
		arrival = f.EstimatedArrivalTime
	}
	if arrival > 0 && now.Sub(time.Unix(arrival, 0)) > certainlyOldAfter {
		return true, j.tracking.Expire(ctx, flightID)
	}

	// Probably old: the snapshot may just be behind. Verify upstream.
	j.flightData.InvalidateFlight(flightID, f.FlightNumber)
	_, err := j.flightData.FlightInfo(ctx, flightID)
	if common.IsCode(err, common.CodeOldFlight) || common.IsCode(err, common.CodeFlightNotFound) {
		return true, j.tracking.Expire(ctx, flightID)
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
