package cache

import (
	"fmt"
	"strings"

	"github.com/venuedash/catalog/internal/model"
)

// TagKind names a group of cache entries that are invalidated together.
type TagKind uint8

const (
	// TagVenueEvents marks entries holding one venue's events.
	TagVenueEvents TagKind = iota + 1
	// TagOwnerEvents marks entries holding every venue of one owner.
	TagOwnerEvents
	// TagAllEvents marks catalog-wide (admin) event entries.
	TagAllEvents
	// TagVenueAnalytics marks per-venue aggregates derived from events.
	TagVenueAnalytics
	// TagFilterOptions marks catalog-wide facet entries.
	TagFilterOptions
)

var tagKindNames = map[TagKind]string{
	TagVenueEvents:    "venue-events",
	TagOwnerEvents:    "owner-events",
	TagAllEvents:      "all-events",
	TagVenueAnalytics: "venue-analytics",
	TagFilterOptions:  "filter-options",
}

func (k TagKind) String() string {
	if name, ok := tagKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("tag-kind(%d)", uint8(k))
}

// Tag is an invalidation label. ID is empty for catalog-wide kinds.
type Tag struct {
	Kind TagKind
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + ":" + t.ID
}

// ParseTag is the inverse of Tag.String.
func ParseTag(s string) (Tag, error) {
	name, id, _ := strings.Cut(s, ":")
	for kind, n := range tagKindNames {
		if n == name {
			return Tag{Kind: kind, ID: id}, nil
		}
	}
	return Tag{}, fmt.Errorf("unknown tag %q", s)
}

// TagsForScope returns the tags attached to a scope's event entries.
func TagsForScope(scope model.Scope) []Tag {
	switch scope.Kind {
	case model.ScopeVenue:
		return []Tag{{Kind: TagVenueEvents, ID: scope.ID}, {Kind: TagVenueAnalytics, ID: scope.ID}}
	case model.ScopeUser:
		return []Tag{{Kind: TagOwnerEvents, ID: scope.ID}}
	default:
		return []Tag{{Kind: TagAllEvents}}
	}
}

// FilterOptionsTags returns the tags attached to catalog-wide facet entries.
func FilterOptionsTags() []Tag {
	return []Tag{{Kind: TagFilterOptions}}
}

// TagsForMutation returns every tag a successful create or update of an
// event at m.VenueID makes stale. Entries of other venues and other owners
// are not touched.
func TagsForMutation(m model.MutationScope) []Tag {
	tags := []Tag{
		{Kind: TagVenueEvents, ID: m.VenueID},
		{Kind: TagVenueAnalytics, ID: m.VenueID},
	}
	if m.OwnerID != "" {
		tags = append(tags, Tag{Kind: TagOwnerEvents, ID: m.OwnerID})
	}
	return append(tags, Tag{Kind: TagAllEvents}, Tag{Kind: TagFilterOptions})
}

func hasAnyTag(have, want []Tag) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
