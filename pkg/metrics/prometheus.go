// Package metrics provides Prometheus metrics for the matchbox engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the matchbox service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a matching engine
	matchesComputed prometheus.Counter
	matchErrors     prometheus.Counter
	matchLatency    prometheus.Histogram
	findRequests    prometheus.Counter

	// Batch Metrics - Full-corpus computation runs
	batchRuns          prometheus.Counter
	batchDuration      prometheus.Histogram
	batchPairsTotal    prometheus.Counter
	batchPairsFailed   prometheus.Counter
	batchFlushes       prometheus.Counter
	batchWorkersActive prometheus.Gauge

	// Cache Metrics - In-process match cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Corpus Metrics - Scale indicators
	corpusActors prometheus.Gauge
	badgeScans   prometheus.Gauge

	// Store Metrics - Document store performance
	storeWriteLatency prometheus.Histogram
	storeReadLatency  prometheus.Histogram
	storeErrors       prometheus.Counter

	// Weights Metrics - Profile management
	profileOperations  *prometheus.CounterVec
	profileValidations prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchbox",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.matchesComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_computed_total",
		Help:      "Total number of pairwise matches computed",
	})

	m.matchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_errors_total",
		Help:      "Total number of failed match computations",
	})

	m.matchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_latency_milliseconds",
		Help:      "Histogram of single-pair match computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.findRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "find_requests_total",
		Help:      "Total number of top-N match find requests",
	})

	// Batch Metrics
	m.batchRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_runs_total",
		Help:      "Total number of full-corpus batch runs started",
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Duration of full-corpus batch runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	})

	m.batchPairsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_pairs_total",
		Help:      "Total number of pairs processed across batch runs",
	})

	m.batchPairsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_pairs_failed_total",
		Help:      "Total number of pairs that failed during batch runs",
	})

	m.batchFlushes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_flushes_total",
		Help:      "Total number of batched store writes",
	})

	m.batchWorkersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_workers_active",
		Help:      "Current number of active batch workers",
	})

	// Cache Metrics
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of match cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of match cache misses",
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Current number of live match cache entries",
	})

	// Corpus Metrics
	m.corpusActors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corpus_actors",
		Help:      "Number of actors in the loaded corpus snapshot",
	})

	m.badgeScans = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badge_scans",
		Help:      "Number of indexed badge-scan pairs",
	})

	// Store Metrics
	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Document store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeReadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_read_latency_milliseconds",
		Help:      "Document store read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of document store errors",
	})

	// Weights Metrics
	m.profileOperations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "profile_operations_total",
			Help:      "Total number of weight profile operations by kind",
		},
		[]string{"operation"},
	)

	m.profileValidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_validation_warnings_total",
		Help:      "Total number of weight profile validation warnings",
	})
}

// RecordMatchComputed increments the matches computed counter.
func RecordMatchComputed() {
	globalManager.matchesComputed.Inc()
}

// RecordMatchError increments the match errors counter.
func RecordMatchError() {
	globalManager.matchErrors.Inc()
}

// RecordMatchLatency records single-pair match latency in milliseconds.
func RecordMatchLatency(latencyMs float64) {
	globalManager.matchLatency.Observe(latencyMs)
}

// RecordFindRequest increments the find requests counter.
func RecordFindRequest() {
	globalManager.findRequests.Inc()
}

// RecordBatchRun increments the batch runs counter.
func RecordBatchRun() {
	globalManager.batchRuns.Inc()
}

// RecordBatchDuration records a batch run duration in seconds.
func RecordBatchDuration(seconds float64) {
	globalManager.batchDuration.Observe(seconds)
}

// RecordBatchPairs adds to the processed-pairs counter.
func RecordBatchPairs(n int) {
	globalManager.batchPairsTotal.Add(float64(n))
}

// RecordBatchPairFailed increments the failed-pairs counter.
func RecordBatchPairFailed() {
	globalManager.batchPairsFailed.Inc()
}

// RecordBatchFlush increments the batched-write counter.
func RecordBatchFlush() {
	globalManager.batchFlushes.Inc()
}

// UpdateBatchWorkersActive sets the active batch worker gauge.
func UpdateBatchWorkersActive(count int) {
	globalManager.batchWorkersActive.Set(float64(count))
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheEntries sets the live cache entry gauge.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// UpdateCorpusActors sets the corpus size gauge.
func UpdateCorpusActors(count int) {
	globalManager.corpusActors.Set(float64(count))
}

// UpdateBadgeScans sets the indexed badge-scan gauge.
func UpdateBadgeScans(count int) {
	globalManager.badgeScans.Set(float64(count))
}

// RecordStoreWriteLatency records store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreReadLatency records store read latency in milliseconds.
func RecordStoreReadLatency(latencyMs float64) {
	globalManager.storeReadLatency.Observe(latencyMs)
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordProfileOperation records a weight profile operation by kind
// (create, update, delete, export, import, variant).
func RecordProfileOperation(operation string) {
	globalManager.profileOperations.WithLabelValues(operation).Inc()
}

// RecordProfileValidationWarning increments the validation warning counter.
func RecordProfileValidationWarning() {
	globalManager.profileValidations.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
