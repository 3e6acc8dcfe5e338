package repositories

import (
	"context"

	"just-landed/tracker/internal/models/entities"
)

// UserFlightRepository manages the user<->flight tracking memberships.
type UserFlightRepository struct{}

func NewUserFlightRepository() *UserFlightRepository {
	return &UserFlightRepository{}
}

func (r *UserFlightRepository) Link(ctx context.Context, q Queryer, userUUID, flightID string) error {
	query := `
		INSERT INTO user_flights (user_uuid, flight_id)
		VALUES ($1, $2)
		ON CONFLICT (user_uuid, flight_id) DO NOTHING
	`
	_, err := q.ExecContext(ctx, query, userUUID, flightID)
	return err
}

// Unlink removes the membership and reports whether a row was deleted.
func (r *UserFlightRepository) Unlink(ctx context.Context, q Queryer, userUUID, flightID string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM user_flights WHERE user_uuid = $1 AND flight_id = $2`,
		userUUID, flightID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *UserFlightRepository) CountTrackers(ctx context.Context, q Queryer, flightID string) (int64, error) {
	var count int64
	err := q.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM user_flights WHERE flight_id = $1`, flightID)
	return count, err
}

// UsersForFlight returns every user currently tracking the flight, with
// their notification preferences.
func (r *UserFlightRepository) UsersForFlight(ctx context.Context, q Queryer, flightID string) ([]entities.User, error) {
	var users []entities.User
	query := `
		SELECT u.* FROM users u
		JOIN user_flights uf ON uf.user_uuid = u.uuid
		WHERE uf.flight_id = $1
	`
	err := q.SelectContext(ctx, &users, query, flightID)
	return users, err
}

// UnlinkAllForFlight removes every membership for a flight. Used when a
// stale flight is swept for all trackers at once.
func (r *UserFlightRepository) UnlinkAllForFlight(ctx context.Context, q Queryer, flightID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM user_flights WHERE flight_id = $1`, flightID)
	return err
}
