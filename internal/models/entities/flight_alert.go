package entities

import "time"

// FlightAlert records an upstream alert subscription. One enabled alert
// exists per tracked flight regardless of how many users track it.
type FlightAlert struct {
	AlertID      int64     `db:"alert_id"`
	FlightID     string    `db:"flight_id"`
	FlightNumber string    `db:"flight_number"`
	Enabled      bool      `db:"enabled"`
	CreatedAt    time.Time `db:"created_at"`
}
