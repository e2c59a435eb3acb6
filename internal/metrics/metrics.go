// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for store operations.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeMissingIndex = "missing_index"
	OutcomeError        = "error"
)

// Collector holds all Prometheus metrics for the service. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CounterFailures prometheus.Counter
	MissingIndexes  *prometheus.CounterVec
	CounterDrift    prometheus.Counter
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Document store operations by operation, collection and outcome",
			},
			[]string{"operation", "collection", "outcome"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Document store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "collection"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "public_cache_hits_total",
				Help:      "Public game listings served from cache",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "public_cache_misses_total",
				Help:      "Public game listings fetched from the store",
			},
		),
		CounterFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "library_counter_failures_total",
				Help:      "Library game_count increments that failed after a save",
			},
		),
		MissingIndexes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "missing_index_errors_total",
				Help:      "Queries refused for a missing composite index",
			},
			[]string{"collection"},
		),
		CounterDrift: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "library_counter_drift_fixed_total",
				Help:      "Library game_count values rewritten by reconciliation",
			},
		),
	}

	registry.MustRegister(
		c.StoreOperations,
		c.StoreDuration,
		c.CacheHits,
		c.CacheMisses,
		c.CounterFailures,
		c.MissingIndexes,
		c.CounterDrift,
	)

	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveStore records one store operation
func (c *Collector) ObserveStore(operation, collection, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.StoreOperations.WithLabelValues(operation, collection, outcome).Inc()
	c.StoreDuration.WithLabelValues(operation, collection).Observe(elapsed.Seconds())
	if outcome == OutcomeMissingIndex {
		c.MissingIndexes.WithLabelValues(collection).Inc()
	}
}

// CacheHit records a public listing served from cache
func (c *Collector) CacheHit() {
	if c != nil {
		c.CacheHits.Inc()
	}
}

// CacheMiss records a public listing fetched from the store
func (c *Collector) CacheMiss() {
	if c != nil {
		c.CacheMisses.Inc()
	}
}

// CounterFailure records a failed game_count increment
func (c *Collector) CounterFailure() {
	if c != nil {
		c.CounterFailures.Inc()
	}
}

// DriftFixed records a reconciled game_count
func (c *Collector) DriftFixed() {
	if c != nil {
		c.CounterDrift.Inc()
	}
}
