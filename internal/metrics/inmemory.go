package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CacheHits              uint64
	CacheMisses            uint64
	FetchesSucceeded       uint64
	FetchesFailed          uint64
	FetchDurationTotalNs   int64
	EntriesInvalidated     uint64
	EventsCreated          uint64
	EventsUpdated          uint64
	MutationsFailed        uint64
	InvalidationsPublished uint64
	InvalidationsFailed    uint64
}

// FetchCount is the number of completed origin fetches.
func (s Snapshot) FetchCount() uint64 {
	return s.FetchesSucceeded + s.FetchesFailed
}

// InMemoryRecorder stores metrics in memory. Store labels are folded into
// the totals.
type InMemoryRecorder struct {
	cacheHits              uint64
	cacheMisses            uint64
	fetchesSucceeded       uint64
	fetchesFailed          uint64
	fetchDurationTotalNs   int64
	entriesInvalidated     uint64
	eventsCreated          uint64
	eventsUpdated          uint64
	mutationsFailed        uint64
	invalidationsPublished uint64
	invalidationsFailed    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CacheHits:              atomic.LoadUint64(&m.cacheHits),
		CacheMisses:            atomic.LoadUint64(&m.cacheMisses),
		FetchesSucceeded:       atomic.LoadUint64(&m.fetchesSucceeded),
		FetchesFailed:          atomic.LoadUint64(&m.fetchesFailed),
		FetchDurationTotalNs:   atomic.LoadInt64(&m.fetchDurationTotalNs),
		EntriesInvalidated:     atomic.LoadUint64(&m.entriesInvalidated),
		EventsCreated:          atomic.LoadUint64(&m.eventsCreated),
		EventsUpdated:          atomic.LoadUint64(&m.eventsUpdated),
		MutationsFailed:        atomic.LoadUint64(&m.mutationsFailed),
		InvalidationsPublished: atomic.LoadUint64(&m.invalidationsPublished),
		InvalidationsFailed:    atomic.LoadUint64(&m.invalidationsFailed),
	}
}

// CacheHit increments the cache hit counter.
func (m *InMemoryRecorder) CacheHit(string) {
	atomic.AddUint64(&m.cacheHits, 1)
}

// CacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) CacheMiss(string) {
	atomic.AddUint64(&m.cacheMisses, 1)
}

// FetchCompleted records one origin fetch.
func (m *InMemoryRecorder) FetchCompleted(_ string, duration time.Duration, err error) {
	if err != nil {
		atomic.AddUint64(&m.fetchesFailed, 1)
	} else {
		atomic.AddUint64(&m.fetchesSucceeded, 1)
	}
	atomic.AddInt64(&m.fetchDurationTotalNs, duration.Nanoseconds())
}

// EntriesInvalidated adds count to the invalidated entries counter.
func (m *InMemoryRecorder) EntriesInvalidated(_ string, count int) {
	if count > 0 {
		atomic.AddUint64(&m.entriesInvalidated, uint64(count))
	}
}

// IncEventCreated increments the event created counter.
func (m *InMemoryRecorder) IncEventCreated() {
	atomic.AddUint64(&m.eventsCreated, 1)
}

// IncEventUpdated increments the event updated counter.
func (m *InMemoryRecorder) IncEventUpdated() {
	atomic.AddUint64(&m.eventsUpdated, 1)
}

// IncMutationFailed increments the failed mutation counter.
func (m *InMemoryRecorder) IncMutationFailed(string) {
	atomic.AddUint64(&m.mutationsFailed, 1)
}

// IncInvalidationPublished counts a fan-out publish by status.
func (m *InMemoryRecorder) IncInvalidationPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.invalidationsPublished, 1)
		return
	}
	atomic.AddUint64(&m.invalidationsFailed, 1)
}
