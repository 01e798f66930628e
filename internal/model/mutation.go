package model

// CreateEventInput is the form data for a new event.
type CreateEventInput struct {
	Name               string
	Date               Date
	VenueID            string
	Performers         []EventPerformer
	TicketPrice        *float64
	TicketPriceMin     *float64
	TicketPriceMax     *float64
	TotalTickets       int
	TicketsSold        *int
	BarSales           *float64
	TotalTicketRevenue *float64
	Notes              string
}

// UpdateEventInput holds the fields to change; nil fields are left untouched.
type UpdateEventInput struct {
	Name               *string
	Date               *Date
	TicketPrice        *float64
	TicketPriceMin     *float64
	TicketPriceMax     *float64
	TotalTickets       *int
	TicketsSold        *int
	BarSales           *float64
	TotalTicketRevenue *float64
	Notes              *string
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateEventInput) IsEmpty() bool {
	return u.Name == nil && u.Date == nil && u.TicketPrice == nil &&
		u.TicketPriceMin == nil && u.TicketPriceMax == nil &&
		u.TotalTickets == nil && u.TicketsSold == nil && u.BarSales == nil &&
		u.TotalTicketRevenue == nil && u.Notes == nil
}

// MutationScope identifies what a successful mutation touched.
type MutationScope struct {
	VenueID string
	OwnerID string
}

// MutationResult reports the outcome of a create or update.
// Cause keeps the underlying error for callers that map it to a status.
type MutationResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Cause   error  `json:"-"`
}
