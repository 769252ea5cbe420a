package observability

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Chat metrics
	MessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of messages appended to chat rooms",
		},
	)

	UnreadMarkersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_unread_markers_created_total",
			Help: "Total number of unread markers created on send",
		},
	)

	UnreadMarkersClearedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_unread_markers_cleared_total",
			Help: "Total number of unread markers removed by mark-as-read",
		},
		[]string{"selection"},
	)

	MessagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_fetched_total",
			Help: "Total number of messages returned by fetch requests",
		},
		[]string{"messages_type"},
	)

	AccessDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_access_denied_total",
			Help: "Total number of chat requests rejected for non-participants",
		},
	)

	EventsPublishFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_publish_failed_total",
			Help: "Total number of domain events that could not be published",
		},
		[]string{"event"},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation", "table"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections currently in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// ObserveDBQuery records the latency of a query started at start.
// Intended for use with defer.
func ObserveDBQuery(operation, table string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordDBStats copies connection pool statistics into the gauges
func RecordDBStats(stats sql.DBStats) {
	DBConnectionsOpen.Set(float64(stats.OpenConnections))
	DBConnectionsInUse.Set(float64(stats.InUse))
	DBConnectionsIdle.Set(float64(stats.Idle))
}

// CollectDBStats samples db pool statistics every interval until ctx is done
func CollectDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RecordDBStats(db.Stats())
		}
	}
}
