package catalog

import (
	"fmt"
	"strings"

	"github.com/venuedash/catalog/internal/model"
)

// Filter is one predicate of a Query. The set of implementations is closed:
// only the types in this file satisfy it.
type Filter interface {
	isFilter()
}

// Search matches a case-insensitive substring of the event name, the venue
// name, or any performer name.
type Search struct{ Text string }

// Genre matches events where any performer has exactly this genre.
type Genre struct{ Name string }

// City matches the venue location exactly.
type City struct{ Name string }

// CapacityRange matches venue capacity within [Min, Max].
// Events with unknown capacity never match.
type CapacityRange struct{ Min, Max int }

// SoldRange matches PercentageSold within [Min, Max].
type SoldRange struct{ Min, Max float64 }

// VenueSizeBucket is the legacy single-value capacity filter.
// It is ignored when a CapacityRange is present in the same query.
type VenueSizeBucket struct{ Size model.VenueSize }

// SoldBucket is the legacy single-value percentage-sold filter.
// It is ignored when a SoldRange is present in the same query.
type SoldBucket struct{ Level SoldLevel }

// DateFrom matches events on or after Date.
type DateFrom struct{ Date model.Date }

// DateTo matches events on or before Date.
type DateTo struct{ Date model.Date }

// TimeFrameFilter partitions events around today.
type TimeFrameFilter struct{ Frame model.TimeFrame }

func (Search) isFilter()          {}
func (Genre) isFilter()           {}
func (City) isFilter()            {}
func (CapacityRange) isFilter()   {}
func (SoldRange) isFilter()       {}
func (VenueSizeBucket) isFilter() {}
func (SoldBucket) isFilter()      {}
func (DateFrom) isFilter()        {}
func (DateTo) isFilter()          {}
func (TimeFrameFilter) isFilter() {}

// Query is a set of filters: an AND of Filters followed by an
// optional sort.
type Query struct {
	Filters []Filter
	Sort    SortKey
}

// NewQuery builds an unsorted query from filters.
func NewQuery(filters ...Filter) Query {
	return Query{Filters: filters}
}

// With returns a copy of q with extra filters appended.
func (q Query) With(filters ...Filter) Query {
	out := Query{Sort: q.Sort, Filters: make([]Filter, 0, len(q.Filters)+len(filters))}
	out.Filters = append(out.Filters, q.Filters...)
	out.Filters = append(out.Filters, filters...)
	return out
}

// SortedBy returns a copy of q with the given sort key.
func (q Query) SortedBy(key SortKey) Query {
	q.Filters = append([]Filter(nil), q.Filters...)
	q.Sort = key
	return q
}

type predicate func(e *model.EnrichedEvent) bool

// Apply returns the events matching q, in q's sort order. The input slice is
// never modified; ties keep their input order.
func Apply(events []model.EnrichedEvent, q Query, today model.Date) []model.EnrichedEvent {
	preds := compile(q, today)

	out := make([]model.EnrichedEvent, 0, len(events))
	for i := range events {
		if matchAll(&events[i], preds) {
			out = append(out, events[i])
		}
	}

	sortEvents(out, q.Sort)
	return out
}

// Count returns how many events match q's filters without materialising them.
func Count(events []model.EnrichedEvent, q Query, today model.Date) int {
	preds := compile(q, today)
	n := 0
	for i := range events {
		if matchAll(&events[i], preds) {
			n++
		}
	}
	return n
}

func matchAll(e *model.EnrichedEvent, preds []predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

func compile(q Query, today model.Date) []predicate {
	var hasCapacityRange, hasSoldRange bool
	for _, f := range q.Filters {
		switch f.(type) {
		case CapacityRange:
			hasCapacityRange = true
		case SoldRange:
			hasSoldRange = true
		}
	}

	preds := make([]predicate, 0, len(q.Filters))
	for _, f := range q.Filters {
		switch f := f.(type) {
		case Search:
			if text := strings.TrimSpace(f.Text); text != "" {
				preds = append(preds, matchSearch(strings.ToLower(text)))
			}
		case Genre:
			if f.Name != "" {
				preds = append(preds, matchGenre(f.Name))
			}
		case City:
			if f.Name != "" {
				name := f.Name
				preds = append(preds, func(e *model.EnrichedEvent) bool { return e.Venue.Location == name })
			}
		case CapacityRange:
			preds = append(preds, matchCapacity(f.Min, f.Max))
		case SoldRange:
			preds = append(preds, matchSold(f.Min, f.Max))
		case VenueSizeBucket:
			if !hasCapacityRange {
				lo, hi := f.Size.Bounds()
				preds = append(preds, matchCapacity(lo, hi))
			}
		case SoldBucket:
			if !hasSoldRange {
				preds = append(preds, matchSoldLevel(f.Level))
			}
		case DateFrom:
			if !f.Date.IsZero() {
				from := f.Date
				preds = append(preds, func(e *model.EnrichedEvent) bool { return !e.Date.Before(from) })
			}
		case DateTo:
			if !f.Date.IsZero() {
				to := f.Date
				preds = append(preds, func(e *model.EnrichedEvent) bool { return !e.Date.After(to) })
			}
		case TimeFrameFilter:
			if f.Frame != "" && f.Frame != model.TimeFrameAll {
				frame := f.Frame
				preds = append(preds, func(e *model.EnrichedEvent) bool { return frame.Contains(e.Date, today) })
			}
		default:
			// Filter is closed to this package; reaching here means a variant
			// was added without a case above.
			panic(fmt.Sprintf("catalog: unhandled filter %T", f))
		}
	}
	return preds
}

func matchSearch(lowered string) predicate {
	return func(e *model.EnrichedEvent) bool {
		if strings.Contains(strings.ToLower(e.Name), lowered) ||
			strings.Contains(strings.ToLower(e.Venue.Name), lowered) {
			return true
		}
		for _, p := range e.Performers {
			if strings.Contains(strings.ToLower(p.Name), lowered) {
				return true
			}
		}
		return false
	}
}

func matchGenre(genre string) predicate {
	return func(e *model.EnrichedEvent) bool {
		for _, p := range e.Performers {
			if p.Genre == genre {
				return true
			}
		}
		return false
	}
}

func matchCapacity(lo, hi int) predicate {
	return func(e *model.EnrichedEvent) bool {
		if e.Venue.Capacity == nil {
			return false
		}
		c := *e.Venue.Capacity
		return c >= lo && c <= hi
	}
}

func matchSold(lo, hi float64) predicate {
	return func(e *model.EnrichedEvent) bool {
		return e.PercentageSold >= lo && e.PercentageSold <= hi
	}
}

func matchSoldLevel(level SoldLevel) predicate {
	return func(e *model.EnrichedEvent) bool {
		return ClassifySold(e.PercentageSold) == level
	}
}

// TimeFrame returns the coarse time frame requested by q, used to pick the
// cache entry the query runs against.
func (q Query) TimeFrame() model.TimeFrame {
	frame := model.TimeFrameAll
	for _, f := range q.Filters {
		if tf, ok := f.(TimeFrameFilter); ok && tf.Frame != "" {
			frame = tf.Frame
		}
	}
	return frame
}
