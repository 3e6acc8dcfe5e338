package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/services"
)

// TrackHandler handles GET /v1/track/{flight_number}/{flight_id}: fetches
// the current flight, records the caller as a tracker and returns driving
// guidance when the caller sent a location.
func TrackHandler(
	flightData *services.FlightDataService,
	driving *services.DrivingService,
	tracking *services.TrackingService,
	metricsReg *metrics.MetricsRegistry,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flightNumber := models.SanitizeFlightNumber(chi.URLParam(r, "flight_number"))
		flightID := chi.URLParam(r, "flight_id")
		if !models.ValidFlightNumber(flightNumber) || flightID == "" {
			respondWithError(w, initTime, http.StatusBadRequest, constants.MsgInvalidFlightNumber)
			return
		}

		q := r.URL.Query()
		userUUID := q.Get("uuid")
		if _, err := uuid.Parse(userUUID); err != nil {
			respondWithError(w, initTime, http.StatusBadRequest, "Invalid or missing user identifier.")
			return
		}

		flight, err := flightData.FlightInfo(r.Context(), flightID)
		if err != nil {
			respondAppError(w, initTime, err)
			return
		}

		lat, lon, hasLocation := parseLocation(q.Get("latitude"), q.Get("longitude"))
		drivingTime := drivingTimeFor(r, driving, flight, lat, lon, hasLocation)

		req := &services.TrackRequest{
			UserUUID:        userUUID,
			Flight:          flight,
			DrivingTime:     drivingTime,
			PushToken:       q.Get("push_token"),
			ReminderLead:    parseSeconds(q.Get("reminder_lead")),
			NotifyChanged:   parseBoolDefaultTrue(q.Get("notify_changed")),
			NotifyDeparted:  parseBoolDefaultTrue(q.Get("notify_departed")),
			NotifyArrived:   parseBoolDefaultTrue(q.Get("notify_arrived")),
			NotifyDiverted:  parseBoolDefaultTrue(q.Get("notify_diverted")),
			NotifyCanceled:  parseBoolDefaultTrue(q.Get("notify_canceled")),
			NotifyReminders: parseBoolDefaultTrue(q.Get("notify_reminders")),
		}
		if hasLocation {
			req.Latitude = &lat
			req.Longitude = &lon
		}

		if err := tracking.Track(r.Context(), req); err != nil {
			respondAppError(w, initTime, err)
			return
		}
		metricsReg.FlightsTrackedTotal.Inc()

		resp := dtosTrackResponse(flight, drivingTime)
		respondWithData(w, initTime, "Tracking flight", resp)
	}
}

// UntrackHandler handles GET /v1/untrack/{flight_id}.
func UntrackHandler(tracking *services.TrackingService, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flightID := chi.URLParam(r, "flight_id")
		userUUID := r.URL.Query().Get("uuid")
		if _, err := uuid.Parse(userUUID); err != nil || flightID == "" {
			respondWithError(w, initTime, http.StatusBadRequest, "Invalid or missing user identifier.")
			return
		}

		if err := tracking.Untrack(r.Context(), userUUID, flightID); err != nil {
			respondAppError(w, initTime, err)
			return
		}

		metricsReg.FlightsUntracked.Inc()
		respondWithData(w, initTime, "No longer tracking flight", nil)
	}
}

// drivingTimeFor computes driving seconds from the caller to the
// destination airport. Errors never fail the track: a flight without
// driving guidance is still worth tracking.
func drivingTimeFor(r *http.Request, driving *services.DrivingService, flight *models.Flight, lat, lon float64, hasLocation bool) int64 {
	if !hasLocation {
		return 0
	}

	dest := flight.Destination
	if dest.Latitude == 0 && dest.Longitude == 0 {
		return 0
	}

	miles := models.MilesBetween(lat, lon, dest.Latitude, dest.Longitude)
	if miles < constants.CloseToAirportMiles || miles > constants.FarFromAirportMiles {
		// Already at the airport, or too far away to be driving there.
		return 0
	}

	seconds, err := driving.DrivingTime(r.Context(), lat, lon, dest.Latitude, dest.Longitude)
	if err != nil {
		logging.Warn("Driving time unavailable",
			"flight_id", flight.FlightID, "error", err.Error())
		return 0
	}
	return seconds
}

func parseLocation(latStr, lonStr string) (lat, lon float64, ok bool) {
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseSeconds(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseBoolDefaultTrue(s string) bool {
	if s == "" {
		return true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return true
	}
	return v
}
