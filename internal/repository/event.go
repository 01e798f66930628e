package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/venuedash/catalog/internal/model"
)

// Common errors for event repository operations.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrVenueNotFound     = errors.New("venue not found")
	ErrPerformerNotFound = errors.New("performer not found")
	ErrConstraint        = errors.New("event violates a schema constraint")
)

const selectEvents = `
	SELECT e.id, e.name, e.date, e.ticket_price, e.ticket_price_min, e.ticket_price_max,
	       e.total_tickets, e.tickets_sold, e.bar_sales, e.total_ticket_revenue, e.notes,
	       v.id, v.name, v.location, v.capacity, v.owner_id
	FROM events e
	JOIN venues v ON v.id = e.venue_id
`

// FetchEvents returns every event visible to scope within the time frame,
// newest first, with venue and performers joined.
func (r *Repository) FetchEvents(ctx context.Context, scope model.Scope, tf model.TimeFrame) ([]model.Event, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	query := selectEvents + " WHERE TRUE"
	var args []any
	argIndex := 1

	switch scope.Kind {
	case model.ScopeVenue:
		query += fmt.Sprintf(" AND e.venue_id = $%d", argIndex)
		args = append(args, scope.ID)
		argIndex++
	case model.ScopeUser:
		query += fmt.Sprintf(" AND v.owner_id = $%d", argIndex)
		args = append(args, scope.ID)
		argIndex++
	}

	today := model.Today(r.now(), r.loc).Time()
	switch tf {
	case model.TimeFramePast:
		query += fmt.Sprintf(" AND e.date < $%d", argIndex)
		args = append(args, today)
	case model.TimeFrameUpcoming:
		query += fmt.Sprintf(" AND e.date >= $%d", argIndex)
		args = append(args, today)
	}

	query += " ORDER BY e.date DESC, e.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	index := make(map[string]int)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		index[event.ID] = len(events)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	if len(events) == 0 {
		return events, nil
	}
	if err := r.attachPerformers(ctx, events, index); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchFilterOptions returns the catalog-wide event rows the facet
// aggregator reduces.
func (r *Repository) FetchFilterOptions(ctx context.Context) ([]model.Event, error) {
	return r.FetchEvents(ctx, model.AdminScope(), model.TimeFrameAll)
}

// CreateEvent inserts an event and its line-up and returns the new id.
func (r *Repository) CreateEvent(ctx context.Context, input model.CreateEventInput) (string, error) {
	id := ulid.Make().String()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO events (id, name, date, venue_id, ticket_price, ticket_price_min, ticket_price_max,
		                    total_tickets, tickets_sold, bar_sales, total_ticket_revenue, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		id,
		input.Name,
		input.Date.Time(),
		input.VenueID,
		input.TicketPrice,
		input.TicketPriceMin,
		input.TicketPriceMax,
		input.TotalTickets,
		input.TicketsSold,
		input.BarSales,
		input.TotalTicketRevenue,
		input.Notes,
	)
	if err != nil {
		return "", mapWriteError("create event", err, ErrVenueNotFound)
	}

	for _, p := range input.Performers {
		_, err := tx.Exec(ctx, `
			INSERT INTO event_performers (event_id, performer_id, is_headliner, performance_order)
			VALUES ($1, $2, $3, $4)
		`, id, p.PerformerID, p.IsHeadliner, p.Order)
		if err != nil {
			return "", mapWriteError("add performer", err, ErrPerformerNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit event: %w", err)
	}
	return id, nil
}

// UpdateEvent applies the non-nil fields of input and reports the venue and
// owner the event belongs to.
func (r *Repository) UpdateEvent(ctx context.Context, id string, input model.UpdateEventInput) (model.MutationScope, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Date != nil {
		add("date", input.Date.Time())
	}
	if input.TicketPrice != nil {
		add("ticket_price", *input.TicketPrice)
		sets = append(sets, "ticket_price_min = NULL", "ticket_price_max = NULL")
	}
	if input.TicketPriceMin != nil {
		add("ticket_price_min", *input.TicketPriceMin)
	}
	if input.TicketPriceMax != nil {
		add("ticket_price_max", *input.TicketPriceMax)
	}
	if input.TicketPrice == nil && (input.TicketPriceMin != nil || input.TicketPriceMax != nil) {
		sets = append(sets, "ticket_price = NULL")
	}
	if input.TotalTickets != nil {
		add("total_tickets", *input.TotalTickets)
	}
	if input.TicketsSold != nil {
		add("tickets_sold", *input.TicketsSold)
	}
	if input.BarSales != nil {
		add("bar_sales", *input.BarSales)
	}
	if input.TotalTicketRevenue != nil {
		add("total_ticket_revenue", *input.TotalTicketRevenue)
	}
	if input.Notes != nil {
		add("notes", *input.Notes)
	}

	query := fmt.Sprintf(`
		UPDATE events e
		SET %s
		FROM venues v
		WHERE e.id = $1 AND v.id = e.venue_id
		RETURNING e.venue_id, v.owner_id
	`, strings.Join(sets, ", "))

	var scope model.MutationScope
	err := r.pool.QueryRow(ctx, query, args...).Scan(&scope.VenueID, &scope.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MutationScope{}, ErrEventNotFound
		}
		return model.MutationScope{}, mapWriteError("update event", err, ErrVenueNotFound)
	}
	return scope, nil
}

// VenueScope reports the venue and owner an event at venueID belongs to.
func (r *Repository) VenueScope(ctx context.Context, venueID string) (model.MutationScope, error) {
	var scope model.MutationScope
	err := r.pool.QueryRow(ctx, `SELECT id, owner_id FROM venues WHERE id = $1`, venueID).
		Scan(&scope.VenueID, &scope.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MutationScope{}, ErrVenueNotFound
		}
		return model.MutationScope{}, fmt.Errorf("failed to get venue scope: %w", err)
	}
	return scope, nil
}

func (r *Repository) attachPerformers(ctx context.Context, events []model.Event, index map[string]int) error {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ep.event_id, p.id, p.name, p.genre, ep.is_headliner, ep.performance_order
		FROM event_performers ep
		JOIN performers p ON p.id = ep.performer_id
		WHERE ep.event_id = ANY($1)
		ORDER BY ep.event_id, ep.performance_order, p.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch performers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var p model.EventPerformer
		if err := rows.Scan(&eventID, &p.PerformerID, &p.Name, &p.Genre, &p.IsHeadliner, &p.Order); err != nil {
			return fmt.Errorf("failed to scan performer: %w", err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Performers = append(events[i].Performers, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating performers: %w", err)
	}
	return nil
}

// scanEvent scans a row of selectEvents into an Event.
func scanEvent(row pgx.Row) (model.Event, error) {
	var (
		e    model.Event
		date time.Time
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&date,
		&e.TicketPrice,
		&e.TicketPriceMin,
		&e.TicketPriceMax,
		&e.TotalTickets,
		&e.TicketsSold,
		&e.BarSales,
		&e.TotalTicketRevenue,
		&e.Notes,
		&e.Venue.ID,
		&e.Venue.Name,
		&e.Venue.Location,
		&e.Venue.Capacity,
		&e.Venue.OwnerID,
	)
	if err != nil {
		return model.Event{}, err
	}
	e.Date = model.DateOf(date)
	e.Performers = []model.EventPerformer{}
	return e, nil
}

// mapWriteError turns constraint violations into domain errors. A foreign
// key violation maps to fkErr.
func mapWriteError(op string, err error, fkErr error) error {
	switch pgErrorCode(err) {
	case pgForeignKeyViolation:
		return fkErr
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrConstraint, op)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
