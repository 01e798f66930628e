// Package model defines domain entities for the event catalog.
package model

// Venue is the venue an event takes place at, as joined by the origin.
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity *int   `json:"capacity,omitempty"`
	OwnerID  string `json:"owner_id"`
}

// EventPerformer is one performer's association with an event.
type EventPerformer struct {
	PerformerID string `json:"performer_id"`
	Name        string `json:"name"`
	Genre       string `json:"genre,omitempty"`
	IsHeadliner bool   `json:"is_headliner"`
	Order       int    `json:"performance_order"`
}

// Event is a raw event row as returned by the origin store.
// Pricing is either TicketPrice or the TicketPriceMin/TicketPriceMax range.
type Event struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Date               Date             `json:"date"`
	Venue              Venue            `json:"venue"`
	Performers         []EventPerformer `json:"performers"`
	TicketPrice        *float64         `json:"ticket_price,omitempty"`
	TicketPriceMin     *float64         `json:"ticket_price_min,omitempty"`
	TicketPriceMax     *float64         `json:"ticket_price_max,omitempty"`
	TotalTickets       int              `json:"total_tickets"`
	TicketsSold        *int             `json:"tickets_sold,omitempty"`
	BarSales           *float64         `json:"bar_sales,omitempty"`
	TotalTicketRevenue *float64         `json:"total_ticket_revenue,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

// HasPriceRange reports whether the event is priced as a min/max range.
func (e *Event) HasPriceRange() bool {
	return e.TicketPriceMin != nil || e.TicketPriceMax != nil
}

// EnrichedEvent is an Event plus the fields derived from it.
type EnrichedEvent struct {
	Event
	PercentageSold float64 `json:"percentage_sold"`
	TicketRevenue  float64 `json:"ticket_revenue"`
	TotalRevenue   float64 `json:"total_revenue"`
}

// Headliner returns the headlining performer, or the first by order.
func (e *EnrichedEvent) Headliner() (EventPerformer, bool) {
	var first EventPerformer
	found := false
	for _, p := range e.Performers {
		if p.IsHeadliner {
			return p, true
		}
		if !found || p.Order < first.Order {
			first = p
			found = true
		}
	}
	return first, found
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// EventSet is a scope's enriched events together with the facets aggregated
// over them. It is built once per fetch and never modified.
type EventSet struct {
	Events        []EnrichedEvent
	FilterOptions FilterOptions
}
