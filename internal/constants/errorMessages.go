package constants

const (
	MsgInvalidFlightNumber = "That doesn't look like a valid flight number."
	MsgFlightNotFound      = "No flights found for that flight number."
	MsgOldFlight           = "That flight landed a while ago and can no longer be tracked."
	MsgTerminalsUnknown    = "Terminal information is not available for this flight."
	MsgUpstreamUnavailable = "Flight data is temporarily unavailable. Please try again shortly."
	MsgUnableToSetAlert    = "Unable to subscribe to alerts for this flight."
	MsgUnableToDeleteAlert = "Unable to remove the alert subscription for this flight."
	MsgNoDrivingRoute      = "No driving route to the airport could be found."
	MsgDrivingQuota        = "Driving time lookups are over quota."
	MsgUntrackedFlight     = "This flight is not currently being tracked."
)
