// Package observability exposes Prometheus instrumentation for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MailDeliveries counts outbound transactional emails by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_mail_deliveries_total",
		Help: "Total number of outbound mail deliveries by outcome",
	}, []string{"outcome"})

	// MediaOperations counts media-host calls by operation and outcome.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_media_operations_total",
		Help: "Total number of media delegate operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ToggleOperations counts like/follow toggles by kind and resulting action.
	ToggleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_toggle_operations_total",
		Help: "Total number of toggle operations by kind and action",
	}, []string{"kind", "action"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circle_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
