package routes

import (
	"github.com/go-chi/chi/v5"

	"just-landed/tracker/internal/api"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/middleware"
)

// RegisterAPIRoutes registers the v1 client endpoints and the upstream
// alert callback. Client routes are signed; the callback is IP-gated.
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))

		// Client endpoints, signed with the shared secret.
		v1.Group(func(client chi.Router) {
			client.Use(middleware.RateLimitMiddleware)
			client.Use(middleware.SignatureMiddleware(deps.Config.ClientSecret))

			client.Get("/search/{flight_number}", api.SearchHandler(deps.Services.FlightData, metricsReg))
			client.Get("/track/{flight_number}/{flight_id}", api.TrackHandler(
				deps.Services.FlightData, deps.Services.Driving, deps.Services.Tracking, metricsReg))
			client.Get("/untrack/{flight_id}", api.UntrackHandler(deps.Services.Tracking, metricsReg))
		})

		// Upstream alert delivery, restricted by source network.
		v1.Group(func(trusted chi.Router) {
			trusted.Use(middleware.TrustedSourceMiddleware(deps.Config.TrustedAlertSources))
			trusted.Post("/alert", api.AlertCallbackHandler(deps.Services.DelayQueue, metricsReg))
		})
	})
}
