// Package metrics holds the Prometheus instruments shared by the HTTP layer and the services.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActivityRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_records_total",
			Help: "Activity record calls by outcome (created, folded, duplicate)",
		},
		[]string{"outcome"},
	)

	ActivityMergeConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_merge_conflicts_total",
			Help: "Aggregation races resolved by retrying",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notifications written, by type",
		},
		[]string{"type"},
	)

	NotificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_skipped_total",
			Help: "Notifications not written, by reason",
		},
		[]string{"reason"},
	)

	NotificationsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_read_total",
			Help: "Unread to read transitions",
		},
	)

	CollectionShares = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_shares_total",
			Help: "Collection shares created",
		},
		[]string{"platform", "share_type"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "side_effect_failures_total",
			Help: "Best-effort side effects that failed after the primary write committed",
		},
		[]string{"effect"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// RecordHTTPRequest observes one served request. route is the registered path, not the raw URL,
// so label cardinality stays bounded.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
