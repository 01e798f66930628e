package model

import "math"

// VenueSize is a coarse venue capacity bucket.
type VenueSize string

const (
	VenueSizeSmall  VenueSize = "small"
	VenueSizeMedium VenueSize = "medium"
	VenueSizeLarge  VenueSize = "large"
)

// Venue size bucket edges. Small is [0,200], medium (200,1000], large above.
const (
	SmallVenueMaxCapacity  = 200
	MediumVenueMaxCapacity = 1000
)

// Bounds returns the inclusive capacity range of the bucket.
// An unknown size matches nothing.
func (s VenueSize) Bounds() (lo, hi int) {
	switch s {
	case VenueSizeSmall:
		return 0, SmallVenueMaxCapacity
	case VenueSizeMedium:
		return SmallVenueMaxCapacity + 1, MediumVenueMaxCapacity
	case VenueSizeLarge:
		return MediumVenueMaxCapacity + 1, math.MaxInt
	default:
		return 1, 0
	}
}

// ClassifyCapacity returns the bucket a venue capacity falls in.
func ClassifyCapacity(capacity int) VenueSize {
	switch {
	case capacity <= SmallVenueMaxCapacity:
		return VenueSizeSmall
	case capacity <= MediumVenueMaxCapacity:
		return VenueSizeMedium
	default:
		return VenueSizeLarge
	}
}

// VenueSizeCount is the number of events in one venue size bucket.
type VenueSizeCount struct {
	Size  VenueSize `json:"size"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// HistogramBin counts events whose venue capacity falls in [Min, Max].
type HistogramBin struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// FilterOptions is the facet set used to populate filter controls.
type FilterOptions struct {
	Genres         []string         `json:"genres"`
	Cities         []string         `json:"cities"`
	VenueSizes     []VenueSizeCount `json:"venue_sizes"`
	VenueHistogram []HistogramBin   `json:"venue_histogram"`
}
