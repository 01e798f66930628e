package catalog

import (
	"fmt"

	"github.com/venuedash/catalog/internal/model"
)

// SoldLevel is the legacy percentage-sold bucket.
type SoldLevel string

const (
	SoldLow    SoldLevel = "low"
	SoldMedium SoldLevel = "medium"
	SoldHigh   SoldLevel = "high"
)

// Sold level edges: low is below 33%, high is above 66%.
const (
	soldLowBelow  = 33.0
	soldHighAbove = 66.0
)

// ClassifySold returns the legacy bucket for a percentage sold.
func ClassifySold(pct float64) SoldLevel {
	switch {
	case pct < soldLowBelow:
		return SoldLow
	case pct <= soldHighAbove:
		return SoldMedium
	default:
		return SoldHigh
	}
}

// ParseSoldLevel validates a legacy sold bucket name.
func ParseSoldLevel(s string) (SoldLevel, error) {
	switch l := SoldLevel(s); l {
	case SoldLow, SoldMedium, SoldHigh:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown sold level %q", ErrInvalidQuery, s)
	}
}

// ParseVenueSize validates a legacy venue size bucket name.
func ParseVenueSize(s string) (model.VenueSize, error) {
	switch v := model.VenueSize(s); v {
	case model.VenueSizeSmall, model.VenueSizeMedium, model.VenueSizeLarge:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown venue size %q", ErrInvalidQuery, s)
	}
}
