package service

import (
	"context"
	"log/slog"

	"github.com/venuedash/catalog/internal/cache"
	"github.com/venuedash/catalog/internal/metrics"
	"github.com/venuedash/catalog/internal/model"
)

// Publisher fans invalidation tags out to other processes.
type Publisher interface {
	Publish(ctx context.Context, tags []cache.Tag) error
}

// Invalidator marks cached entries stale after successful mutations.
type Invalidator struct {
	stores    []cache.Invalidator
	publisher Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewInvalidator creates an Invalidator over stores.
func NewInvalidator(logger *slog.Logger, recorder metrics.Recorder, stores ...cache.Invalidator) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Invalidator{
		stores:  stores,
		metrics: recorder,
		logger:  logger.With("component", "invalidator"),
	}
}

// SetPublisher enables cross-process fan-out. Call before serving traffic.
func (i *Invalidator) SetPublisher(p Publisher) {
	i.publisher = p
}

// OnMutationSuccess marks every entry tagged with the mutated venue, its
// owner, the admin view and the filter options stale, and returns how many
// local entries it marked. Nothing is refetched here.
func (i *Invalidator) OnMutationSuccess(ctx context.Context, scope model.MutationScope) int {
	tags := cache.TagsForMutation(scope)

	total := 0
	for _, s := range i.stores {
		total += s.Invalidate(tags...)
	}

	i.logger.Info("invalidated after mutation",
		"venue_id", scope.VenueID,
		"owner_id", scope.OwnerID,
		"entries", total,
	)

	if i.publisher != nil {
		// Peers that miss the message still expire the entry on TTL.
		if err := i.publisher.Publish(ctx, tags); err != nil {
			i.metrics.IncInvalidationPublished("failed")
			i.logger.Warn("failed to publish invalidation", "venue_id", scope.VenueID, "error", err)
		} else {
			i.metrics.IncInvalidationPublished("success")
		}
	}

	return total
}
