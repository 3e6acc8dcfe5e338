package entities

import "time"

// UserFlight is the membership row linking a user to a flight they track.
type UserFlight struct {
	UserUUID  string    `db:"user_uuid"`
	FlightID  string    `db:"flight_id"`
	CreatedAt time.Time `db:"created_at"`
}
