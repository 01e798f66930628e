package handler

import (
	"fmt"
	"net/http"

	"github.com/venuedash/catalog/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "catalog_cache_hits_total %d\n", snap.CacheHits)
	writeMetric(w, "catalog_cache_misses_total %d\n", snap.CacheMisses)
	writeMetric(w, "catalog_cache_fetches_total{status=\"success\"} %d\n", snap.FetchesSucceeded)
	writeMetric(w, "catalog_cache_fetches_total{status=\"error\"} %d\n", snap.FetchesFailed)
	writeMetric(w, "catalog_cache_fetch_duration_seconds_count %d\n", snap.FetchCount())
	writeMetric(w, "catalog_cache_fetch_duration_seconds_sum %.6f\n", float64(snap.FetchDurationTotalNs)/1e9)
	writeMetric(w, "catalog_cache_entries_invalidated_total %d\n", snap.EntriesInvalidated)

	writeMetric(w, "catalog_events_mutated_total{op=\"create\"} %d\n", snap.EventsCreated)
	writeMetric(w, "catalog_events_mutated_total{op=\"update\"} %d\n", snap.EventsUpdated)
	writeMetric(w, "catalog_events_mutation_failures_total %d\n", snap.MutationsFailed)

	writeMetric(w, "catalog_invalidations_published_total{status=\"success\"} %d\n", snap.InvalidationsPublished)
	writeMetric(w, "catalog_invalidations_published_total{status=\"failed\"} %d\n", snap.InvalidationsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
