// Package catalog is the in-memory query engine over a scope's event set:
// derivation of computed fields, filtering, sorting and facet aggregation.
// Everything here is pure and runs without I/O.
package catalog

import "github.com/venuedash/catalog/internal/model"

// Derive computes PercentageSold and TotalRevenue for a raw event.
// It never fails; missing optional fields count as zero.
func Derive(raw model.Event) model.EnrichedEvent {
	ticketRevenue := ticketRevenue(&raw)
	barSales := 0.0
	if raw.BarSales != nil {
		barSales = *raw.BarSales
	}

	return model.EnrichedEvent{
		Event:          cloneEvent(raw),
		PercentageSold: percentageSold(&raw),
		TicketRevenue:  ticketRevenue,
		TotalRevenue:   ticketRevenue + barSales,
	}
}

// DeriveAll enriches rows in order.
func DeriveAll(rows []model.Event) []model.EnrichedEvent {
	out := make([]model.EnrichedEvent, len(rows))
	for i := range rows {
		out[i] = Derive(rows[i])
	}
	return out
}

func percentageSold(e *model.Event) float64 {
	if e.TicketsSold == nil || e.TotalTickets <= 0 {
		return 0
	}
	return float64(*e.TicketsSold) / float64(e.TotalTickets) * 100
}

// ticketRevenue prefers the recorded total; otherwise sold × single price.
// A range-priced event without a recorded total has no computable revenue.
func ticketRevenue(e *model.Event) float64 {
	if e.TotalTicketRevenue != nil {
		return *e.TotalTicketRevenue
	}
	if e.TicketsSold == nil || e.TicketPrice == nil {
		return 0
	}
	return float64(*e.TicketsSold) * *e.TicketPrice
}

// cloneEvent copies the performer slice so callers holding the raw row
// and callers holding the enriched row never share backing arrays.
func cloneEvent(e model.Event) model.Event {
	if e.Performers != nil {
		e.Performers = append([]model.EventPerformer(nil), e.Performers...)
	}
	return e
}

// EffectivePrice is the price used for sorting: the single price when set,
// else the top of the range, else zero.
func EffectivePrice(e *model.Event) float64 {
	switch {
	case e.TicketPrice != nil:
		return *e.TicketPrice
	case e.TicketPriceMax != nil:
		return *e.TicketPriceMax
	default:
		return 0
	}
}
