package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// CacheHit is a no-op.
func (n *NoopRecorder) CacheHit(store string) {}

// CacheMiss is a no-op.
func (n *NoopRecorder) CacheMiss(store string) {}

// FetchCompleted is a no-op.
func (n *NoopRecorder) FetchCompleted(store string, duration time.Duration, err error) {}

// EntriesInvalidated is a no-op.
func (n *NoopRecorder) EntriesInvalidated(store string, count int) {}

// IncEventCreated is a no-op.
func (n *NoopRecorder) IncEventCreated() {}

// IncEventUpdated is a no-op.
func (n *NoopRecorder) IncEventUpdated() {}

// IncMutationFailed is a no-op.
func (n *NoopRecorder) IncMutationFailed(op string) {}

// IncInvalidationPublished is a no-op.
func (n *NoopRecorder) IncInvalidationPublished(status string) {}
