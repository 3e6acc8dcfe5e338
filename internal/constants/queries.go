package constants

const (
	GetUserByUUID = `
	SELECT * FROM users WHERE uuid = $1
	`

	GetTrackedFlightByID = `
	SELECT * FROM tracked_flights WHERE flight_id = $1
	`

	GetEnabledAlertByFlightNumber = `
	SELECT * FROM flight_alerts WHERE flight_number = $1 AND enabled = TRUE
	`

	GetEnabledAlertByAlertID = `
	SELECT * FROM flight_alerts WHERE alert_id = $1 AND enabled = TRUE
	`
)
