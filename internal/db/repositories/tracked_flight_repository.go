package repositories

import (
	"context"
	"database/sql"
	"errors"

	"just-landed/tracker/internal/models/entities"
)

type TrackedFlightRepository struct{}

func NewTrackedFlightRepository() *TrackedFlightRepository {
	return &TrackedFlightRepository{}
}

func (r *TrackedFlightRepository) Get(ctx context.Context, q Queryer, flightID string) (*entities.TrackedFlight, error) {
	var tf entities.TrackedFlight
	err := q.GetContext(ctx, &tf, `SELECT * FROM tracked_flights WHERE flight_id = $1`, flightID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tf, nil
}

// GetForUpdate locks the row for the duration of the transaction so
// concurrent mutations on the same flight serialize.
func (r *TrackedFlightRepository) GetForUpdate(ctx context.Context, q Queryer, flightID string) (*entities.TrackedFlight, error) {
	var tf entities.TrackedFlight
	err := q.GetContext(ctx, &tf, `SELECT * FROM tracked_flights WHERE flight_id = $1 FOR UPDATE`, flightID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tf, nil
}

// Upsert creates the ledger row or refreshes its snapshot. The original
// schedule columns are written only on insert; conflicts leave them alone.
func (r *TrackedFlightRepository) Upsert(ctx context.Context, q Queryer, tf *entities.TrackedFlight) error {
	query := `
		INSERT INTO tracked_flights (
			flight_id, flight_number, flight_data,
			orig_departure_time, orig_flight_duration
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (flight_id) DO UPDATE SET
			flight_data = EXCLUDED.flight_data,
			updated_at = now()
	`
	_, err := q.ExecContext(ctx, query,
		tf.FlightID, tf.FlightNumber, tf.FlightData,
		tf.OrigDepartureTime, tf.OrigFlightDuration,
	)
	return err
}

// UpdateSnapshot refreshes only the serialized flight data.
func (r *TrackedFlightRepository) UpdateSnapshot(ctx context.Context, q Queryer, flightID string, data []byte) error {
	_, err := q.ExecContext(ctx,
		`UPDATE tracked_flights SET flight_data = $2, updated_at = now() WHERE flight_id = $1`,
		flightID, data)
	return err
}

func (r *TrackedFlightRepository) Delete(ctx context.Context, q Queryer, flightID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM tracked_flights WHERE flight_id = $1`, flightID)
	return err
}

// ListAll returns every tracked flight, for the sweep jobs.
func (r *TrackedFlightRepository) ListAll(ctx context.Context, q Queryer) ([]entities.TrackedFlight, error) {
	var flights []entities.TrackedFlight
	err := q.SelectContext(ctx, &flights, `SELECT * FROM tracked_flights ORDER BY created_at`)
	return flights, err
}
