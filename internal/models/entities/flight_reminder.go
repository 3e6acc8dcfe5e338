package entities

import (
	"time"

	"just-landed/tracker/internal/constants"
)

// FlightReminder is a scheduled leave-soon or leave-now notification for a
// tracked flight. Sent reminders are immutable; recomputes only move the
// fire time of unsent rows.
type FlightReminder struct {
	ID        int64                  `db:"id"`
	FlightID  string                 `db:"flight_id"`
	Kind      constants.ReminderKind `db:"kind"`
	FireTime  int64                  `db:"fire_time"`
	Sent      bool                   `db:"sent"`
	CreatedAt time.Time              `db:"created_at"`
	UpdatedAt time.Time              `db:"updated_at"`
}
