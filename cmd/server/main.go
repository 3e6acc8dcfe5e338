package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"just-landed/tracker/internal/api"
	"just-landed/tracker/internal/config"
	"just-landed/tracker/internal/db"
	"just-landed/tracker/internal/jobs"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/metrics"
	"just-landed/tracker/internal/routes"
	"just-landed/tracker/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Flight tracker starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx
	if err := db.InitPostgres(); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM, used by the airport store
	if _, err := db.InitPostgresORM(); err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}

	deps, err := api.InitDependencies(cfg)
	if err != nil {
		logging.Error("Failed to initialize dependencies", "error", err.Error())
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	// Point upstream alert delivery at this deployment. Best-effort: the
	// registration survives restarts, so a transient failure here only
	// matters on first boot.
	if cfg.AlertEndpointURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := deps.Services.Source.RegisterAlertEndpoint(ctx, cfg.AlertEndpointURL); err != nil {
			logging.Warn("Failed to register alert endpoint",
				"address", cfg.AlertEndpointURL, "error", err.Error())
		} else {
			logging.Info("Registered alert endpoint", "address", cfg.AlertEndpointURL)
		}
		cancel()
	}

	metricsReg := metrics.NewMetricsRegistry()
	upSince := time.Now()

	router := routes.RegisterRoutes(deps, metricsReg, upSince)

	jobsContainer := jobs.InitializeJobs(context.Background(), deps, metricsReg)
	defer jobsContainer.Cron.Stop()

	workers.InitWorkers(context.Background(), deps)

	// Metrics endpoint lives outside the Chi router so it skips the
	// signature and rate-limit middleware.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	addr := ":" + cfg.Port
	logging.Info("Server starting", "addr", addr, "environment", cfg.AppEnv)
	log.Fatal(http.ListenAndServe(addr, mux))
}
