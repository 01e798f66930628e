//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/venuedash/catalog/internal/model"
	"github.com/venuedash/catalog/internal/testutil"
)

// ============================================================================
// Event Origin Integration Tests
// ============================================================================

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestIntegrationEventRepository_CreateAndFetch(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	input := testutil.NewTestEventInput(t, "v1", model.MustDate("2024-07-01"))
	input.Performers = []model.EventPerformer{
		{PerformerID: "p2", IsHeadliner: false, Order: 2},
		{PerformerID: "p1", IsHeadliner: true, Order: 1},
	}

	id, err := repo.CreateEvent(ctx, input)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if id == "" {
		t.Fatal("CreateEvent returned an empty id")
	}

	events, err := repo.FetchEvents(ctx, model.VenueScope("v1"), model.TimeFrameAll)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got := events[0]
	if got.ID != id || got.Name != input.Name {
		t.Errorf("event = %s/%q, want %s/%q", got.ID, got.Name, id, input.Name)
	}
	if got.Date != input.Date {
		t.Errorf("Date = %s, want %s", got.Date, input.Date)
	}
	if got.Venue.Location != "Austin" || got.Venue.OwnerID != "owner-1" {
		t.Errorf("venue not joined: %+v", got.Venue)
	}
	if got.Venue.Capacity == nil || *got.Venue.Capacity != 500 {
		t.Errorf("venue capacity = %v, want 500", got.Venue.Capacity)
	}
	if got.TicketPrice == nil || *got.TicketPrice != 25 {
		t.Errorf("TicketPrice = %v, want 25", got.TicketPrice)
	}
	if len(got.Performers) != 2 || got.Performers[0].PerformerID != "p1" {
		t.Fatalf("performers = %+v, want p1 then p2", got.Performers)
	}
	if got.Performers[0].Genre != "rock" || !got.Performers[0].IsHeadliner {
		t.Errorf("performer not joined: %+v", got.Performers[0])
	}
}

func TestIntegrationEventRepository_ScopesAndTimeFrames(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	mustCreate(t, ctx, repo, "v1", "2024-05-01")
	mustCreate(t, ctx, repo, "v1", "2024-06-15")
	mustCreate(t, ctx, repo, "v2", "2024-08-01")
	mustCreate(t, ctx, repo, "v3", "2024-09-01")

	tests := []struct {
		name  string
		scope model.Scope
		tf    model.TimeFrame
		want  int
	}{
		{"venue all", model.VenueScope("v1"), model.TimeFrameAll, 2},
		{"venue past", model.VenueScope("v1"), model.TimeFramePast, 1},
		{"venue upcoming includes today", model.VenueScope("v1"), model.TimeFrameUpcoming, 1},
		{"owner", model.UserScope("owner-1"), model.TimeFrameAll, 3},
		{"other owner", model.UserScope("owner-2"), model.TimeFrameAll, 1},
		{"admin", model.AdminScope(), model.TimeFrameAll, 4},
		{"empty venue", model.VenueScope("nope"), model.TimeFrameAll, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.FetchEvents(ctx, tt.scope, tt.tf)
			if err != nil {
				t.Fatalf("FetchEvents failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
			for i := 1; i < len(events); i++ {
				if events[i].Date.After(events[i-1].Date) {
					t.Errorf("events not ordered by date descending at %d", i)
				}
			}
		})
	}
}

func TestIntegrationEventRepository_UpdateEvent(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	id := mustCreate(t, ctx, repo, "v1", "2024-07-01")

	name := "Renamed"
	scope, err := repo.UpdateEvent(ctx, id, model.UpdateEventInput{
		Name:           &name,
		TicketPriceMin: model.FloatPtr(10),
		TicketPriceMax: model.FloatPtr(30),
		TicketsSold:    model.IntPtr(90),
	})
	if err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}
	if scope.VenueID != "v1" || scope.OwnerID != "owner-1" {
		t.Errorf("scope = %+v, want v1/owner-1", scope)
	}

	events, err := repo.FetchEvents(ctx, model.VenueScope("v1"), model.TimeFrameAll)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	got := events[0]
	if got.Name != name {
		t.Errorf("Name = %q, want %q", got.Name, name)
	}
	if got.TicketPrice != nil {
		t.Errorf("TicketPrice = %v, want nil after switching to a range", *got.TicketPrice)
	}
	if got.TicketPriceMax == nil || *got.TicketPriceMax != 30 {
		t.Errorf("TicketPriceMax = %v, want 30", got.TicketPriceMax)
	}
	if got.TicketsSold == nil || *got.TicketsSold != 90 {
		t.Errorf("TicketsSold = %v, want 90", got.TicketsSold)
	}
}

func TestIntegrationEventRepository_UpdateChecksStoredRow(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	// Stored row has total_tickets 100.
	id := mustCreate(t, ctx, repo, "v1", "2024-07-01")

	_, err := repo.UpdateEvent(ctx, id, model.UpdateEventInput{TicketsSold: model.IntPtr(101)})
	if !errors.Is(err, ErrConstraint) {
		t.Errorf("tickets_sold above stored total: expected ErrConstraint, got %v", err)
	}

	if _, err := repo.UpdateEvent(ctx, id, model.UpdateEventInput{
		TicketPriceMin: model.FloatPtr(10),
		TicketPriceMax: model.FloatPtr(30),
	}); err != nil {
		t.Fatalf("UpdateEvent range failed: %v", err)
	}
	_, err = repo.UpdateEvent(ctx, id, model.UpdateEventInput{TicketPriceMin: model.FloatPtr(50)})
	if !errors.Is(err, ErrConstraint) {
		t.Errorf("ticket_price_min above stored max: expected ErrConstraint, got %v", err)
	}

	events, err := repo.FetchEvents(ctx, model.VenueScope("v1"), model.TimeFrameAll)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	got := events[0]
	if got.TicketsSold == nil || *got.TicketsSold != 40 {
		t.Errorf("TicketsSold = %v, want 40 after rejected update", got.TicketsSold)
	}
	if got.TicketPriceMin == nil || *got.TicketPriceMin != 10 {
		t.Errorf("TicketPriceMin = %v, want 10 after rejected update", got.TicketPriceMin)
	}
}

func TestIntegrationEventRepository_NotFound(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	name := "x"
	if _, err := repo.UpdateEvent(ctx, "missing", model.UpdateEventInput{Name: &name}); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("UpdateEvent missing: expected ErrEventNotFound, got %v", err)
	}
	if _, err := repo.VenueScope(ctx, "missing"); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("VenueScope missing: expected ErrVenueNotFound, got %v", err)
	}

	input := testutil.NewTestEventInput(t, "missing", model.MustDate("2024-07-01"))
	if _, err := repo.CreateEvent(ctx, input); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("CreateEvent unknown venue: expected ErrVenueNotFound, got %v", err)
	}

	input = testutil.NewTestEventInput(t, "v1", model.MustDate("2024-07-01"))
	input.Performers = []model.EventPerformer{{PerformerID: "ghost"}}
	if _, err := repo.CreateEvent(ctx, input); !errors.Is(err, ErrPerformerNotFound) {
		t.Errorf("CreateEvent unknown performer: expected ErrPerformerNotFound, got %v", err)
	}

	events, err := repo.FetchEvents(ctx, model.VenueScope("v1"), model.TimeFrameAll)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("failed create left %d events behind", len(events))
	}
}

func TestIntegrationEventRepository_VenueScope(t *testing.T) {
	ctx, repo := newEventTestEnv(t)
	seedCatalog(t, ctx, repo)

	scope, err := repo.VenueScope(ctx, "v3")
	if err != nil {
		t.Fatalf("VenueScope failed: %v", err)
	}
	if scope.VenueID != "v3" || scope.OwnerID != "owner-2" {
		t.Errorf("scope = %+v, want v3/owner-2", scope)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newEventTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)
	repo.now = func() time.Time { return fixedNow }

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetCatalogSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset catalog schema: %v", err)
	}

	return ctx, repo
}

func seedCatalog(t *testing.T, ctx context.Context, repo *Repository) {
	t.Helper()
	pool := repo.Pool()
	steps := []error{
		testutil.SeedVenue(ctx, pool, "v1", "owner-1", "Austin", model.IntPtr(500)),
		testutil.SeedVenue(ctx, pool, "v2", "owner-1", "Dallas", nil),
		testutil.SeedVenue(ctx, pool, "v3", "owner-2", "Austin", model.IntPtr(1500)),
		testutil.SeedPerformer(ctx, pool, "p1", "The Openers", "rock"),
		testutil.SeedPerformer(ctx, pool, "p2", "Late Set", "jazz"),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
}

func mustCreate(t *testing.T, ctx context.Context, repo *Repository, venueID, date string) string {
	t.Helper()
	id, err := repo.CreateEvent(ctx, testutil.NewTestEventInput(t, venueID, model.MustDate(date)))
	if err != nil {
		t.Fatalf("CreateEvent(%s, %s) failed: %v", venueID, date, err)
	}
	return id
}
