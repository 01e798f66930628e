package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	cacheRequests      *prometheus.CounterVec
	fetches            *prometheus.CounterVec
	fetchDuration      *prometheus.HistogramVec
	entriesInvalidated *prometheus.CounterVec
	eventMutations     *prometheus.CounterVec
	mutationFailures   *prometheus.CounterVec
	invalidations      *prometheus.CounterVec
}

// NewPrometheus creates a PrometheusRecorder with Go runtime and process
// collectors registered alongside the catalog metrics.
func NewPrometheus() *PrometheusRecorder {
	m := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache reads by store and result (hit or miss).",
		}, []string{"store", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fetches_total",
			Help:      "Origin fetches by store and status.",
		}, []string{"store", "status"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_fetch_duration_seconds",
			Help:      "Histogram of origin fetch durations by store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store"}),
		entriesInvalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_entries_invalidated_total",
			Help:      "Cache entries marked stale by invalidation.",
		}, []string{"store"}),
		eventMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_mutated_total",
			Help:      "Successful event mutations by operation.",
		}, []string{"op"}),
		mutationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_mutation_failures_total",
			Help:      "Failed event mutations by operation.",
		}, []string{"op"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidations_published_total",
			Help:      "Invalidation fan-out publishes by status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheRequests,
		m.fetches,
		m.fetchDuration,
		m.entriesInvalidated,
		m.eventMutations,
		m.mutationFailures,
		m.invalidations,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *PrometheusRecorder) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusRecorder) CacheHit(store string) {
	m.cacheRequests.WithLabelValues(store, "hit").Inc()
}

func (m *PrometheusRecorder) CacheMiss(store string) {
	m.cacheRequests.WithLabelValues(store, "miss").Inc()
}

func (m *PrometheusRecorder) FetchCompleted(store string, duration time.Duration, err error) {
	m.fetches.WithLabelValues(store, fetchStatus(err)).Inc()
	m.fetchDuration.WithLabelValues(store).Observe(duration.Seconds())
}

func (m *PrometheusRecorder) EntriesInvalidated(store string, count int) {
	if count > 0 {
		m.entriesInvalidated.WithLabelValues(store).Add(float64(count))
	}
}

func (m *PrometheusRecorder) IncEventCreated() {
	m.eventMutations.WithLabelValues("create").Inc()
}

func (m *PrometheusRecorder) IncEventUpdated() {
	m.eventMutations.WithLabelValues("update").Inc()
}

func (m *PrometheusRecorder) IncMutationFailed(op string) {
	m.mutationFailures.WithLabelValues(op).Inc()
}

func (m *PrometheusRecorder) IncInvalidationPublished(status string) {
	m.invalidations.WithLabelValues(status).Inc()
}
