// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// It satisfies cache.Observer so stores report into it directly.
type Recorder interface {
	// Cache metrics, labelled by store name.
	CacheHit(store string)
	CacheMiss(store string)
	FetchCompleted(store string, duration time.Duration, err error)
	EntriesInvalidated(store string, count int)

	// Event mutation metrics
	IncEventCreated()
	IncEventUpdated()
	IncMutationFailed(op string)

	// Invalidation fan-out metrics
	IncInvalidationPublished(status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

func fetchStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
