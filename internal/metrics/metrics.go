// Package metrics exposes Prometheus metrics for the dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all dashboard metrics.
	Namespace = "jobmate"

	// Subsystem is the subsystem for dashboard metrics.
	Subsystem = "dashboard"
)

// Cache tiers.
const (
	TierMemory  = "memory"
	TierStorage = "storage"
)

// Metrics holds the dashboard's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CacheHitsTotal         *prometheus.CounterVec
	FetchesTotal           *prometheus.CounterVec
	FetchDurationSeconds   prometheus.Histogram
	CachedJobs             prometheus.Gauge
	FavoriteMutationsTotal *prometheus.CounterVec
}

// New creates and registers the metrics on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "cache_hits_total",
				Help:      "Job list lookups served from a cache tier",
			},
			[]string{"tier"},
		),
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "fetches_total",
				Help:      "Upstream job fetches by mode and result",
			},
			[]string{"mode", "result"},
		),
		FetchDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of upstream job fetches in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		CachedJobs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "cached_jobs",
				Help:      "Number of jobs in the provider's memory cache",
			},
		),
		FavoriteMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "favorite_mutations_total",
				Help:      "Favorites changes by operation",
			},
			[]string{"op"},
		),
	}
}

// CacheHit counts a lookup served by tier.
func (m *Metrics) CacheHit(tier string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(tier).Inc()
}

// FetchDone records one upstream fetch. jobs is the size of the decoded
// list and is ignored on error.
func (m *Metrics) FetchDone(mode string, took time.Duration, jobs int, err error) {
	if m == nil {
		return
	}
	m.FetchDurationSeconds.Observe(took.Seconds())
	if err != nil {
		m.FetchesTotal.WithLabelValues(mode, "error").Inc()
		return
	}
	m.FetchesTotal.WithLabelValues(mode, "ok").Inc()
	m.CachedJobs.Set(float64(jobs))
}

// CacheCleared resets the cached jobs gauge.
func (m *Metrics) CacheCleared() {
	if m == nil {
		return
	}
	m.CachedJobs.Set(0)
}

// FavoriteMutation counts a favorites change.
func (m *Metrics) FavoriteMutation(op string) {
	if m == nil {
		return
	}
	m.FavoriteMutationsTotal.WithLabelValues(op).Inc()
}
