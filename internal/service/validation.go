package service

import (
	"fmt"
	"strings"

	"github.com/venuedash/catalog/internal/model"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}

func validateCreate(input model.CreateEventInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(input.VenueID) == "" {
		return invalid("venue_id is required")
	}
	if input.Date.IsZero() {
		return invalid("date is required")
	}
	if input.TotalTickets < 0 {
		return invalid("total_tickets must not be negative")
	}
	if input.TicketsSold != nil {
		if *input.TicketsSold < 0 {
			return invalid("tickets_sold must not be negative")
		}
		if *input.TicketsSold > input.TotalTickets {
			return invalid("tickets_sold exceeds total_tickets")
		}
	}
	if err := validatePricing(input.TicketPrice, input.TicketPriceMin, input.TicketPriceMax); err != nil {
		return err
	}
	if err := validateAmounts(input.BarSales, input.TotalTicketRevenue); err != nil {
		return err
	}
	for i, p := range input.Performers {
		if strings.TrimSpace(p.PerformerID) == "" {
			return invalid("performers[%d].performer_id is required", i)
		}
	}
	return nil
}

func validateUpdate(input model.UpdateEventInput) error {
	if input.IsEmpty() {
		return invalid("no fields to update")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return invalid("name must not be empty")
	}
	if input.Date != nil && input.Date.IsZero() {
		return invalid("date must not be empty")
	}
	if input.TotalTickets != nil && *input.TotalTickets < 0 {
		return invalid("total_tickets must not be negative")
	}
	if input.TicketsSold != nil && *input.TicketsSold < 0 {
		return invalid("tickets_sold must not be negative")
	}
	if input.TotalTickets != nil && input.TicketsSold != nil && *input.TicketsSold > *input.TotalTickets {
		return invalid("tickets_sold exceeds total_tickets")
	}
	if err := validatePricing(input.TicketPrice, input.TicketPriceMin, input.TicketPriceMax); err != nil {
		return err
	}
	return validateAmounts(input.BarSales, input.TotalTicketRevenue)
}

// validatePricing enforces that an event is priced either by a single
// ticket price or by a min/max range.
func validatePricing(price, lo, hi *float64) error {
	if price != nil && (lo != nil || hi != nil) {
		return invalid("ticket_price and a price range are mutually exclusive")
	}
	for name, v := range map[string]*float64{"ticket_price": price, "ticket_price_min": lo, "ticket_price_max": hi} {
		if v != nil && *v < 0 {
			return invalid("%s must not be negative", name)
		}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return invalid("ticket_price_min exceeds ticket_price_max")
	}
	return nil
}

func validateAmounts(barSales, revenue *float64) error {
	if barSales != nil && *barSales < 0 {
		return invalid("bar_sales must not be negative")
	}
	if revenue != nil && *revenue < 0 {
		return invalid("total_ticket_revenue must not be negative")
	}
	return nil
}
