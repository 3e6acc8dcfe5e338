package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the tracker.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Business Metrics
	FlightLookupsTotal   prometheus.CounterVec
	FlightsTrackedTotal  prometheus.Counter
	FlightsUntracked     prometheus.Counter
	AlertsProcessedTotal prometheus.CounterVec
	RemindersSentTotal   prometheus.Counter
	SweepDuration        prometheus.HistogramVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracker_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Business Metrics
		FlightLookupsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_flight_lookups_total",
				Help: "Flight number lookups by outcome",
			},
			[]string{"outcome"},
		),
		FlightsTrackedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_flights_tracked_total",
				Help: "Total successful track requests",
			},
		),
		FlightsUntracked: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_flights_untracked_total",
				Help: "Total successful untrack requests",
			},
		),
		AlertsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_alerts_processed_total",
				Help: "Upstream alert callbacks processed by event code",
			},
			[]string{"event"},
		),
		RemindersSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_reminders_sent_total",
				Help: "Leave reminders delivered",
			},
		),
		SweepDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_sweep_duration_seconds",
				Help:    "Background sweep execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"job_name"},
		),
	}
}
