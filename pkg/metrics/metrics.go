package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Catalog metrics
	ObjectsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photosync_objects_added_total",
			Help: "Total number of objects recorded in the local catalog",
		},
	)

	DaysReplacedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photosync_days_replaced_total",
			Help: "Total number of day replacements applied to the local catalog",
		},
	)

	// Sync metrics
	SyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosync_syncs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"outcome"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photosync_sync_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	DaysMergedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosync_days_merged_total",
			Help: "Total number of day merges performed during sync by direction",
		},
		[]string{"direction"},
	)

	DaysSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photosync_days_skipped_total",
			Help: "Total number of days skipped because both checksums matched",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photosync_api_requests_total",
			Help: "Total number of peer API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(
		ObjectsAddedTotal,
		DaysReplacedTotal,
		SyncsTotal,
		SyncDuration,
		DaysMergedTotal,
		DaysSkippedTotal,
		APIRequestsTotal,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
