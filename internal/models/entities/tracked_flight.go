package entities

import "time"

// TrackedFlight is the canonical ledger row for a flight at least one user
// is tracking. FlightData holds the latest normalized snapshot as JSON.
// OrigDepartureTime and OrigFlightDuration are captured on first track and
// never overwritten; they anchor change detection when the airline revises
// the schedule.
type TrackedFlight struct {
	FlightID           string    `db:"flight_id"`
	FlightNumber       string    `db:"flight_number"`
	FlightData         []byte    `db:"flight_data"`
	OrigDepartureTime  int64     `db:"orig_departure_time"`
	OrigFlightDuration int64     `db:"orig_flight_duration"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
