package catalog

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/venuedash/catalog/internal/model"
)

// SortKey selects the order of a query result. The zero value keeps the
// input order, which for cached sets is date descending.
type SortKey string

const (
	SortNone         SortKey = ""
	SortDateAsc      SortKey = "date_asc"
	SortDateDesc     SortKey = "date_desc"
	SortSoldAsc      SortKey = "sold_asc"
	SortSoldDesc     SortKey = "sold_desc"
	SortCapacityAsc  SortKey = "capacity_asc"
	SortCapacityDesc SortKey = "capacity_desc"
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
)

// SortKeys lists every supported sort key.
var SortKeys = []SortKey{
	SortDateAsc, SortDateDesc,
	SortSoldAsc, SortSoldDesc,
	SortCapacityAsc, SortCapacityDesc,
	SortPriceAsc, SortPriceDesc,
}

// ParseSortKey validates a sort key; the empty string means no sort.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNone, nil
	}
	key := SortKey(s)
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, s)
}

func sortEvents(events []model.EnrichedEvent, key SortKey) {
	compare := comparator(key)
	if compare == nil {
		return
	}
	slices.SortStableFunc(events, compare)
}

func comparator(key SortKey) func(a, b model.EnrichedEvent) int {
	switch key {
	case SortDateAsc:
		return func(a, b model.EnrichedEvent) int { return a.Date.Compare(b.Date) }
	case SortDateDesc:
		return func(a, b model.EnrichedEvent) int { return b.Date.Compare(a.Date) }
	case SortSoldAsc:
		return func(a, b model.EnrichedEvent) int { return cmp.Compare(a.PercentageSold, b.PercentageSold) }
	case SortSoldDesc:
		return func(a, b model.EnrichedEvent) int { return cmp.Compare(b.PercentageSold, a.PercentageSold) }
	case SortCapacityAsc:
		return func(a, b model.EnrichedEvent) int { return cmp.Compare(capacityOf(&a), capacityOf(&b)) }
	case SortCapacityDesc:
		return func(a, b model.EnrichedEvent) int { return cmp.Compare(capacityOf(&b), capacityOf(&a)) }
	case SortPriceAsc:
		return func(a, b model.EnrichedEvent) int {
			return cmp.Compare(EffectivePrice(&a.Event), EffectivePrice(&b.Event))
		}
	case SortPriceDesc:
		return func(a, b model.EnrichedEvent) int {
			return cmp.Compare(EffectivePrice(&b.Event), EffectivePrice(&a.Event))
		}
	default:
		return nil
	}
}

// capacityOf treats an unknown capacity as zero for ordering.
func capacityOf(e *model.EnrichedEvent) int {
	if e.Venue.Capacity == nil {
		return 0
	}
	return *e.Venue.Capacity
}
