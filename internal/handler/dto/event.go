// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/venuedash/catalog/internal/model"
)

// PerformerRequest links a performer to an event.
type PerformerRequest struct {
	PerformerID string `json:"performer_id"`
	IsHeadliner bool   `json:"is_headliner,omitempty"`
	Order       int    `json:"performance_order,omitempty"`
}

// CreateEventRequest represents the request body for creating an event.
type CreateEventRequest struct {
	Name               string             `json:"name"`
	Date               model.Date         `json:"date"`
	VenueID            string             `json:"venue_id"`
	Performers         []PerformerRequest `json:"performers,omitempty"`
	TicketPrice        *float64           `json:"ticket_price,omitempty"`
	TicketPriceMin     *float64           `json:"ticket_price_min,omitempty"`
	TicketPriceMax     *float64           `json:"ticket_price_max,omitempty"`
	TotalTickets       int                `json:"total_tickets"`
	TicketsSold        *int               `json:"tickets_sold,omitempty"`
	BarSales           *float64           `json:"bar_sales,omitempty"`
	TotalTicketRevenue *float64           `json:"total_ticket_revenue,omitempty"`
	Notes              string             `json:"notes,omitempty"`
}

// UpdateEventRequest represents the request body for updating an event.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Name               *string     `json:"name,omitempty"`
	Date               *model.Date `json:"date,omitempty"`
	TicketPrice        *float64    `json:"ticket_price,omitempty"`
	TicketPriceMin     *float64    `json:"ticket_price_min,omitempty"`
	TicketPriceMax     *float64    `json:"ticket_price_max,omitempty"`
	TotalTickets       *int        `json:"total_tickets,omitempty"`
	TicketsSold        *int        `json:"tickets_sold,omitempty"`
	BarSales           *float64    `json:"bar_sales,omitempty"`
	TotalTicketRevenue *float64    `json:"total_ticket_revenue,omitempty"`
	Notes              *string     `json:"notes,omitempty"`
}

// Counts mirrors the view's set sizes.
type Counts struct {
	All      int `json:"all"`
	Filtered int `json:"filtered"`
}

// ScopedEventsResponse is a filtered read of one scope.
// Error is set alongside Data when a refresh failed and the previous set is
// being served.
type ScopedEventsResponse struct {
	Data          []model.EnrichedEvent `json:"data"`
	FilterOptions model.FilterOptions   `json:"filter_options"`
	Counts        Counts                `json:"counts"`
	IsStale       bool                  `json:"is_stale"`
	IsLoading     bool                  `json:"is_loading"`
	IsRefetching  bool                  `json:"is_refetching"`
	FetchedAt     *time.Time            `json:"fetched_at,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// FilterOptionsResponse wraps catalog-wide facets.
type FilterOptionsResponse struct {
	Data      model.FilterOptions `json:"data"`
	IsStale   bool                `json:"is_stale"`
	FetchedAt *time.Time          `json:"fetched_at,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToCreateEventInput converts the request to a service input.
func (r *CreateEventRequest) ToCreateEventInput() model.CreateEventInput {
	performers := make([]model.EventPerformer, len(r.Performers))
	for i, p := range r.Performers {
		performers[i] = model.EventPerformer{
			PerformerID: p.PerformerID,
			IsHeadliner: p.IsHeadliner,
			Order:       p.Order,
		}
	}
	return model.CreateEventInput{
		Name:               r.Name,
		Date:               r.Date,
		VenueID:            r.VenueID,
		Performers:         performers,
		TicketPrice:        r.TicketPrice,
		TicketPriceMin:     r.TicketPriceMin,
		TicketPriceMax:     r.TicketPriceMax,
		TotalTickets:       r.TotalTickets,
		TicketsSold:        r.TicketsSold,
		BarSales:           r.BarSales,
		TotalTicketRevenue: r.TotalTicketRevenue,
		Notes:              r.Notes,
	}
}

// ToUpdateEventInput converts the request to a service input.
func (r *UpdateEventRequest) ToUpdateEventInput() model.UpdateEventInput {
	return model.UpdateEventInput{
		Name:               r.Name,
		Date:               r.Date,
		TicketPrice:        r.TicketPrice,
		TicketPriceMin:     r.TicketPriceMin,
		TicketPriceMax:     r.TicketPriceMax,
		TotalTickets:       r.TotalTickets,
		TicketsSold:        r.TicketsSold,
		BarSales:           r.BarSales,
		TotalTicketRevenue: r.TotalTicketRevenue,
		Notes:              r.Notes,
	}
}

// TimePtr returns nil for the zero time.
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
