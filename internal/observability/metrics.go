// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Tracker metrics
	TrackRunsTotal    *prometheus.CounterVec
	BurnsIngested     prometheus.Counter
	BurnsDuplicate    prometheus.Counter
	TrackRunDuration  prometheus.Histogram
	LastSuccessfulRun prometheus.Gauge

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Stats metrics
	SnapshotsServed *prometheus.CounterVec

	// Fan-out metrics
	HubSubscribers      prometheus.Gauge
	PriceTicksBroadcast prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "soba_backend"
	}

	return &Metrics{
		// Tracker metrics
		TrackRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "runs_total",
			Help:      "Total number of burn tracking runs by status",
		}, []string{"status"}),
		BurnsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "burns_ingested_total",
			Help:      "Total number of new burn records stored",
		}),
		BurnsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "burns_duplicate_total",
			Help:      "Total number of burn transactions skipped as already known",
		}),
		TrackRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "run_duration_seconds",
			Help:      "Burn tracking run duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120},
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful tracking run",
		}),

		// Provider metrics
		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "providers",
			Name:      "requests_total",
			Help:      "Total number of provider API requests by provider and status",
		}, []string{"provider", "status"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "providers",
			Name:      "request_latency_seconds",
			Help:      "Provider API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		// Stats metrics
		SnapshotsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "snapshots_served_total",
			Help:      "Total number of stats snapshots served by origin",
		}, []string{"origin"}),

		// Fan-out metrics
		HubSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "hub_subscribers",
			Help:      "Current number of connected price stream subscribers",
		}),
		PriceTicksBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "price_ticks_broadcast_total",
			Help:      "Total number of price ticks broadcast to subscribers",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrackRun records a completed tracking run with its outcome.
func RecordTrackRun(status string, duration time.Duration) {
	DefaultMetrics.TrackRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.TrackRunDuration.Observe(duration.Seconds())
	if status == "success" {
		DefaultMetrics.LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordBurnsIngested adds to the new and duplicate burn counters.
func RecordBurnsIngested(newBurns, duplicates int) {
	DefaultMetrics.BurnsIngested.Add(float64(newBurns))
	DefaultMetrics.BurnsDuplicate.Add(float64(duplicates))
}

// RecordProviderRequest records a provider API call.
func RecordProviderRequest(provider, status string, latency time.Duration) {
	DefaultMetrics.ProviderRequests.WithLabelValues(provider, status).Inc()
	DefaultMetrics.ProviderLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordSnapshotServed records a stats snapshot response, fresh or cached.
func RecordSnapshotServed(cached bool) {
	origin := "fresh"
	if cached {
		origin = "cached"
	}
	DefaultMetrics.SnapshotsServed.WithLabelValues(origin).Inc()
}

// RecordSubscriberChange adjusts the connected subscriber gauge.
func RecordSubscriberChange(delta int) {
	DefaultMetrics.HubSubscribers.Add(float64(delta))
}

// RecordTicksBroadcast adds to the broadcast tick counter.
func RecordTicksBroadcast(n int) {
	DefaultMetrics.PriceTicksBroadcast.Add(float64(n))
}
