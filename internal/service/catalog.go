// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/venuedash/catalog/internal/cache"
	"github.com/venuedash/catalog/internal/catalog"
	"github.com/venuedash/catalog/internal/metrics"
	"github.com/venuedash/catalog/internal/model"
	"github.com/venuedash/catalog/internal/repository"
)

// Service errors.
var (
	ErrInvalidEvent  = errors.New("invalid event")
	ErrEventNotFound = errors.New("event not found")
	ErrVenueNotFound = errors.New("venue not found")
)

// ReadMode selects how ScopedEvents treats a missing or stale entry.
type ReadMode int

const (
	// ReadBlocking waits for a fetch when the entry is empty or stale.
	ReadBlocking ReadMode = iota
	// ReadStaleWhileRevalidate answers from whatever is cached and refreshes
	// in the background.
	ReadStaleWhileRevalidate
)

// Counts reports the scope's set size before and after filtering.
type Counts struct {
	All      int `json:"all"`
	Filtered int `json:"filtered"`
}

// View is what a consumer sees of one scope under one query.
//
// Events and FilterOptions are always usable, even alongside Err: a failed
// refresh keeps the previous set. IsLoading means no data has arrived yet;
// IsRefetching means data is shown while a refresh runs.
type View struct {
	Events        []model.EnrichedEvent
	FilterOptions model.FilterOptions
	IsLoading     bool
	IsRefetching  bool
	IsStale       bool
	FetchedAt     time.Time
	Err           error
	Counts        Counts
}

// OptionsView is a read of the catalog-wide filter options.
type OptionsView struct {
	FilterOptions model.FilterOptions
	IsStale       bool
	FetchedAt     time.Time
	Err           error
}

// CatalogConfig wires a CatalogService.
type CatalogConfig struct {
	Origin      Origin
	Events      *cache.Store[model.EventSet]
	Options     *cache.Store[model.FilterOptions]
	Invalidator *Invalidator
	Metrics     metrics.Recorder
	Logger      *slog.Logger
	// Location decides which calendar day is "today"; defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

// CatalogService answers scoped, filtered reads from the cache and runs
// event mutations against the origin.
type CatalogService struct {
	origin      Origin
	events      *cache.Store[model.EventSet]
	options     *cache.Store[model.FilterOptions]
	invalidator *Invalidator
	metrics     metrics.Recorder
	logger      *slog.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(cfg CatalogConfig) *CatalogService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Invalidator == nil {
		cfg.Invalidator = NewInvalidator(cfg.Logger, cfg.Metrics, cfg.Events, cfg.Options)
	}
	return &CatalogService{
		origin:      cfg.Origin,
		events:      cfg.Events,
		options:     cfg.Options,
		invalidator: cfg.Invalidator,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.With("component", "catalog"),
		loc:         cfg.Location,
		now:         cfg.Now,
	}
}

// Today returns the current calendar day in the catalog's location.
func (s *CatalogService) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

// ScopedEvents returns the events of scope matching q, with facets and
// counts computed over the scope's whole set.
func (s *CatalogService) ScopedEvents(ctx context.Context, scope model.Scope, q catalog.Query, mode ReadMode) View {
	if err := scope.Validate(); err != nil {
		return View{Events: []model.EnrichedEvent{}, Err: err}
	}

	tf := q.TimeFrame()
	key := cache.EventsKey(scope, tf)
	tags := cache.TagsForScope(scope)
	fetch := func(ctx context.Context) (model.EventSet, error) {
		rows, err := s.origin.FetchEvents(ctx, scope, tf)
		if err != nil {
			return model.EventSet{}, err
		}
		return BuildEventSet(rows), nil
	}

	var (
		res          cache.Result[model.EventSet]
		revalidating bool
	)
	switch mode {
	case ReadStaleWhileRevalidate:
		res = s.events.Peek(key)
		if errors.Is(res.Err, cache.ErrStoreClosed) {
			break
		}
		if (!res.HasData || res.IsStale) && !res.IsLoading {
			s.events.Revalidate(ctx, key, tags, fetch)
			revalidating = true
		}
	default:
		res = s.events.Get(ctx, key, tags, fetch)
	}

	return s.buildView(res, q, revalidating)
}

func (s *CatalogService) buildView(res cache.Result[model.EventSet], q catalog.Query, revalidating bool) View {
	fetching := res.IsLoading || revalidating
	set := res.Data
	if !res.HasData {
		set = BuildEventSet(nil)
	}

	view := View{
		Events:        catalog.Apply(set.Events, q, s.Today()),
		FilterOptions: set.FilterOptions,
		IsLoading:     !res.HasData && fetching,
		IsRefetching:  res.HasData && fetching,
		IsStale:       res.IsStale,
		FetchedAt:     res.FetchedAt,
		Err:           res.Err,
	}
	view.Counts = Counts{All: len(set.Events), Filtered: len(view.Events)}
	return view
}

// BuildEventSet enriches raw rows and aggregates their facets. Facets are
// recomputed for every fetched set and never filtered by a query.
func BuildEventSet(rows []model.Event) model.EventSet {
	events := catalog.DeriveAll(rows)
	return model.EventSet{Events: events, FilterOptions: catalog.Aggregate(events)}
}

// FilterOptions returns the catalog-wide facets used to populate filter
// controls independently of any scope.
func (s *CatalogService) FilterOptions(ctx context.Context) OptionsView {
	fetch := func(ctx context.Context) (model.FilterOptions, error) {
		rows, err := s.origin.FetchFilterOptions(ctx)
		if err != nil {
			return model.FilterOptions{}, err
		}
		return catalog.Aggregate(catalog.DeriveAll(rows)), nil
	}

	res := s.options.Get(ctx, cache.FilterOptionsKey(), cache.FilterOptionsTags(), fetch)
	view := OptionsView{
		FilterOptions: res.Data,
		IsStale:       res.IsStale,
		FetchedAt:     res.FetchedAt,
		Err:           res.Err,
	}
	if !res.HasData {
		view.FilterOptions = catalog.Aggregate(nil)
	}
	return view
}

// CreateEvent validates and stores a new event. On success every cache entry
// that could list it is marked stale; on failure the cache is untouched.
func (s *CatalogService) CreateEvent(ctx context.Context, input model.CreateEventInput) model.MutationResult {
	if err := validateCreate(input); err != nil {
		return s.failed("create", err)
	}

	scope, err := s.origin.VenueScope(ctx, input.VenueID)
	if err != nil {
		return s.failed("create", mapOriginError(err))
	}

	id, err := s.origin.CreateEvent(ctx, input)
	if err != nil {
		return s.failed("create", mapOriginError(err))
	}

	s.metrics.IncEventCreated()
	s.invalidator.OnMutationSuccess(ctx, scope)
	s.logger.Info("event created", "event_id", id, "venue_id", scope.VenueID)

	return model.MutationResult{Success: true, ID: id}
}

// UpdateEvent applies a partial update. Invalidation follows the same rules
// as CreateEvent.
func (s *CatalogService) UpdateEvent(ctx context.Context, id string, input model.UpdateEventInput) model.MutationResult {
	if id == "" {
		return s.failed("update", ErrEventNotFound)
	}
	if err := validateUpdate(input); err != nil {
		return s.failed("update", err)
	}

	scope, err := s.origin.UpdateEvent(ctx, id, input)
	if err != nil {
		return s.failed("update", mapOriginError(err))
	}

	s.metrics.IncEventUpdated()
	s.invalidator.OnMutationSuccess(ctx, scope)
	s.logger.Info("event updated", "event_id", id, "venue_id", scope.VenueID)

	return model.MutationResult{Success: true, ID: id}
}

func (s *CatalogService) failed(op string, err error) model.MutationResult {
	s.metrics.IncMutationFailed(op)
	if errors.Is(err, ErrInvalidEvent) || errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrVenueNotFound) {
		s.logger.Debug("event mutation rejected", "op", op, "error", err)
	} else {
		s.logger.Error("event mutation failed", "op", op, "error", err)
	}
	return model.MutationResult{Success: false, Error: err.Error(), Cause: err}
}

func mapOriginError(err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repository.ErrVenueNotFound):
		return ErrVenueNotFound
	case errors.Is(err, repository.ErrPerformerNotFound), errors.Is(err, repository.ErrConstraint):
		return invalid("%v", err)
	default:
		return err
	}
}
