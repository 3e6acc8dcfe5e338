package api

import (
	"encoding/json"
	"net/http"
	"time"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/services"
)

// AlertCallbackHandler handles POST /v1/alert, the endpoint registered with
// the upstream flight data provider. The callback is acknowledged
// immediately and processed from the delay queue a few seconds later, so a
// slow reconciliation never makes upstream retry and double-deliver.
func AlertCallbackHandler(scheduler services.TaskScheduler, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var cb dtos.FAAlertCallback
		if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
			respondWithError(w, initTime, http.StatusBadRequest, "Malformed alert payload.")
			return
		}
		if cb.AlertID <= 0 {
			respondWithError(w, initTime, http.StatusBadRequest, "Missing alert id.")
			return
		}

		processAt := time.Now().Add(constants.AlertProcessingDelay)
		if err := scheduler.Schedule(r.Context(), constants.TaskProcessAlert, cb, processAt); err != nil {
			logging.Error("Failed to enqueue alert callback",
				"alert_id", cb.AlertID, "event", cb.EventCode, "error", err.Error())
			respondWithError(w, initTime, http.StatusServiceUnavailable, constants.MsgUpstreamUnavailable)
			return
		}

		metricsReg.AlertsProcessedTotal.WithLabelValues(cb.EventCode).Inc()
		logging.Info("Alert callback queued",
			"alert_id", cb.AlertID, "event", cb.EventCode,
			"flight_id", cb.Flight.FaFlightID)
		respondWithData(w, initTime, "Alert received", nil)
	}
}
