package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/services"
)

// SearchHandler handles GET /v1/search/{flight_number}: upcoming flights
// matching the flight number, soonest scheduled departure first.
func SearchHandler(flightData *services.FlightDataService, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flightNumber := models.SanitizeFlightNumber(chi.URLParam(r, "flight_number"))
		if models.NumericOnly(flightNumber) {
			// A bare number without its airline code can never resolve
			// upstream, but it's the user's mistake, not a malformed request.
			metricsReg.FlightLookupsTotal.WithLabelValues("not_found").Inc()
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgFlightNotFound)
			return
		}
		if !models.ValidFlightNumber(flightNumber) {
			metricsReg.FlightLookupsTotal.WithLabelValues("invalid").Inc()
			respondWithError(w, initTime, http.StatusBadRequest, constants.MsgInvalidFlightNumber)
			return
		}

		flights, err := flightData.LookupFlights(r.Context(), flightNumber)
		if err != nil {
			metricsReg.FlightLookupsTotal.WithLabelValues("not_found").Inc()
			logging.Info("Lookup failed", "flight_number", flightNumber, "error", err.Error())
			respondAppError(w, initTime, err)
			return
		}

		metricsReg.FlightLookupsTotal.WithLabelValues("found").Inc()
		respondWithData(w, initTime, "Flights found", flights)
	}
}
