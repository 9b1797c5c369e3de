// Package metrics provides Prometheus metrics for the forecast viewer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forecast"

var (
	// FetchTotal counts upstream forecast fetches by provider and status.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Total number of forecast fetches",
		},
		[]string{"provider", "status"},
	)

	// FetchDuration measures upstream fetch latency.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of forecast fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// CacheLookups counts cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Forecast cache lookups by result",
		},
		[]string{"result"},
	)

	// LoadedDays observes how many calendar days each loaded forecast spans.
	LoadedDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loaded_days",
			Help:      "Distinct calendar days per loaded forecast",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7},
		},
	)

	// NavigationTotal counts day navigation requests.
	NavigationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_total",
			Help:      "Day navigation requests by direction and outcome",
		},
		[]string{"direction", "moved"},
	)
)

// RecordFetch records an upstream fetch.
func RecordFetch(provider, status string, duration float64) {
	FetchTotal.WithLabelValues(provider, status).Inc()
	FetchDuration.WithLabelValues(provider).Observe(duration)
}

// RecordCacheHit records a cache hit.
func RecordCacheHit() {
	CacheLookups.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a cache miss.
func RecordCacheMiss() {
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordLoad records the day count of a freshly loaded forecast.
func RecordLoad(days int) {
	LoadedDays.Observe(float64(days))
}

// RecordNavigation records a previous/next request.
func RecordNavigation(direction string, moved bool) {
	label := "false"
	if moved {
		label = "true"
	}
	NavigationTotal.WithLabelValues(direction, label).Inc()
}
