// Package metrics defines the prometheus collectors shared by the search
// client, the controllers and the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all collectors of the application
type Metrics struct {
	Registry *prometheus.Registry

	FetchDuration    *prometheus.HistogramVec
	FetchErrors      *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	FavoriteToggles  *prometheus.CounterVec
	StatePublishes   prometheus.Counter
	CombinedFailures prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "imagesearch",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of search API requests by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagesearch",
			Name:      "fetch_errors_total",
			Help:      "Failed search API requests by kind.",
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagesearch",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by kind and result (hit or miss).",
		}, []string{"kind", "result"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagesearch",
			Name:      "favorite_toggles_total",
			Help:      "Save and remove operations on favorites.",
		}, []string{"action"}),
		StatePublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imagesearch",
			Name:      "session_publishes_total",
			Help:      "Session states published to observers.",
		}),
		CombinedFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imagesearch",
			Name:      "combined_fetch_failures_total",
			Help:      "Combined image+video fetches that failed as a whole.",
		}),
	}

	m.Registry.MustRegister(
		m.FetchDuration,
		m.FetchErrors,
		m.CacheLookups,
		m.FavoriteToggles,
		m.StatePublishes,
		m.CombinedFailures,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}
