package repositories

import (
	"context"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models/entities"
)

// ReminderRepository persists leave-soon/leave-now reminders. Sent rows are
// never mutated; the at-most-once send relies on MarkSent's guarded update.
type ReminderRepository struct{}

func NewReminderRepository() *ReminderRepository {
	return &ReminderRepository{}
}

func (r *ReminderRepository) ListForFlight(ctx context.Context, q Queryer, flightID string) ([]entities.FlightReminder, error) {
	var reminders []entities.FlightReminder
	err := q.SelectContext(ctx, &reminders,
		`SELECT * FROM flight_reminders WHERE flight_id = $1 ORDER BY fire_time`, flightID)
	return reminders, err
}

func (r *ReminderRepository) Insert(ctx context.Context, q Queryer, rem *entities.FlightReminder) error {
	query := `
		INSERT INTO flight_reminders (flight_id, kind, fire_time, sent)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.ExecContext(ctx, query, rem.FlightID, rem.Kind, rem.FireTime, rem.Sent)
	return err
}

// UpdateFireTime moves an unsent reminder. Sent reminders are immutable, so
// the predicate guards them.
func (r *ReminderRepository) UpdateFireTime(ctx context.Context, q Queryer, id int64, fireTime int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE flight_reminders SET fire_time = $2, updated_at = now() WHERE id = $1 AND sent = FALSE`,
		id, fireTime)
	return err
}

// MarkSent flips sent false->true and reports whether this caller won the
// flip. Exactly one caller sees true per reminder.
func (r *ReminderRepository) MarkSent(ctx context.Context, q Queryer, id int64) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE flight_reminders SET sent = TRUE, updated_at = now() WHERE id = $1 AND sent = FALSE`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteUnsentForFlight clears pending reminders, e.g. when a flight is
// canceled or diverted.
func (r *ReminderRepository) DeleteUnsentForFlight(ctx context.Context, q Queryer, flightID string) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM flight_reminders WHERE flight_id = $1 AND sent = FALSE`, flightID)
	return err
}

func (r *ReminderRepository) DeleteForFlight(ctx context.Context, q Queryer, flightID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM flight_reminders WHERE flight_id = $1`, flightID)
	return err
}

// ListDue returns unsent reminders whose fire time has passed.
func (r *ReminderRepository) ListDue(ctx context.Context, q Queryer, now int64) ([]entities.FlightReminder, error) {
	var reminders []entities.FlightReminder
	err := q.SelectContext(ctx, &reminders,
		`SELECT * FROM flight_reminders WHERE sent = FALSE AND fire_time <= $1 ORDER BY fire_time`, now)
	return reminders, err
}

// FindKind returns the reminder of the given kind for a flight, if any.
func (r *ReminderRepository) FindKind(ctx context.Context, q Queryer, flightID string, kind constants.ReminderKind) (*entities.FlightReminder, error) {
	reminders, err := r.ListForFlight(ctx, q, flightID)
	if err != nil {
		return nil, err
	}
	for i := range reminders {
		if reminders[i].Kind == kind {
			return &reminders[i], nil
		}
	}
	return nil, nil
}
