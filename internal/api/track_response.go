package api

import (
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/services"
)

// dtosTrackResponse assembles the track payload. Leave-for-airport time is
// only meaningful when a driving time was computed.
func dtosTrackResponse(flight *models.Flight, drivingTime int64) dtos.TrackResponse {
	resp := dtos.TrackResponse{Flight: flight, DrivingTime: drivingTime}
	if _, leaveNow, ok := services.ComputeReminderTimes(flight, drivingTime, 0); ok {
		resp.LeaveForAirportTime = leaveNow
	}
	return resp
}
