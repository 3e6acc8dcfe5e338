package dtos

import "just-landed/tracker/internal/models"

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// TrackResponse is the payload of a successful track call: the current
// flight plus the driving guidance when the client sent a location.
type TrackResponse struct {
	Flight *models.Flight `json:"flight"`

	// Seconds of driving from the client's location to the destination
	// airport. Zero when no location was sent or no route exists.
	DrivingTime int64 `json:"drivingTime,omitempty"`

	// Unix time the user should leave to arrive as the flight does.
	LeaveForAirportTime int64 `json:"leaveForAirportTime,omitempty"`
}
