package repositories

import (
	"context"
	"database/sql"
	"errors"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models/entities"
)

// AlertRepository persists upstream alert subscriptions.
type AlertRepository struct{}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{}
}

func (r *AlertRepository) FindEnabledByFlightNumber(ctx context.Context, q Queryer, flightNumber string) (*entities.FlightAlert, error) {
	var alert entities.FlightAlert
	err := q.GetContext(ctx, &alert, constants.GetEnabledAlertByFlightNumber, flightNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) FindByAlertID(ctx context.Context, q Queryer, alertID int64) (*entities.FlightAlert, error) {
	var alert entities.FlightAlert
	err := q.GetContext(ctx, &alert, constants.GetEnabledAlertByAlertID, alertID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) FindByFlightID(ctx context.Context, q Queryer, flightID string) (*entities.FlightAlert, error) {
	var alert entities.FlightAlert
	err := q.GetContext(ctx, &alert,
		`SELECT * FROM flight_alerts WHERE flight_id = $1 AND enabled = TRUE`, flightID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) Insert(ctx context.Context, q Queryer, alert *entities.FlightAlert) error {
	query := `
		INSERT INTO flight_alerts (alert_id, flight_id, flight_number, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (alert_id) DO UPDATE SET
			flight_id = EXCLUDED.flight_id,
			enabled = EXCLUDED.enabled
	`
	_, err := q.ExecContext(ctx, query, alert.AlertID, alert.FlightID, alert.FlightNumber, alert.Enabled)
	return err
}

func (r *AlertRepository) Delete(ctx context.Context, q Queryer, alertID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM flight_alerts WHERE alert_id = $1`, alertID)
	return err
}

// ListEnabled returns all locally enabled subscriptions, for the orphan
// audit.
func (r *AlertRepository) ListEnabled(ctx context.Context, q Queryer) ([]entities.FlightAlert, error) {
	var alerts []entities.FlightAlert
	err := q.SelectContext(ctx, &alerts, `SELECT * FROM flight_alerts WHERE enabled = TRUE`)
	return alerts, err
}
