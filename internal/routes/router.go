package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"just-landed/tracker/internal/api"
	"just-landed/tracker/internal/db"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/middleware"
)

// RegisterRoutes builds the HTTP handler tree around an already-initialized
// dependency graph.
func RegisterRoutes(deps *api.Dependencies, metricsReg *metrics.MetricsRegistry, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.SignatureHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.RedisClient, upSince))

	RegisterAPIRoutes(r, metricsReg, deps)

	return r
}
