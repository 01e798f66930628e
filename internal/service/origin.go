package service

import (
	"context"

	"github.com/venuedash/catalog/internal/model"
)

// Origin is the authoritative event store the catalog caches.
// repository.Repository is the Postgres implementation.
type Origin interface {
	FetchEvents(ctx context.Context, scope model.Scope, tf model.TimeFrame) ([]model.Event, error)
	FetchFilterOptions(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, input model.CreateEventInput) (string, error)
	UpdateEvent(ctx context.Context, id string, input model.UpdateEventInput) (model.MutationScope, error)
	VenueScope(ctx context.Context, venueID string) (model.MutationScope, error)
}
