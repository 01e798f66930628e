package cache

import (
	"strings"

	"github.com/venuedash/catalog/internal/model"
)

// Kind distinguishes what a cache entry holds.
type Kind string

const (
	KindEvents        Kind = "events"
	KindFilterOptions Kind = "filter_options"
)

// Key identifies one cache entry: what it holds, for which scope, and for
// which coarse time frame.
type Key struct {
	Kind      Kind
	Scope     model.Scope
	TimeFrame model.TimeFrame
}

// EventsKey is the key of a scope's enriched event set.
func EventsKey(scope model.Scope, tf model.TimeFrame) Key {
	if tf == "" {
		tf = model.TimeFrameAll
	}
	return Key{Kind: KindEvents, Scope: scope, TimeFrame: tf}
}

// FilterOptionsKey is the key of the catalog-wide facet set.
func FilterOptionsKey() Key {
	return Key{Kind: KindFilterOptions, Scope: model.AdminScope(), TimeFrame: model.TimeFrameAll}
}

// String is the canonical form, also used to coalesce fetches.
func (k Key) String() string {
	return strings.Join([]string{string(k.Kind), k.Scope.String(), string(k.TimeFrame)}, "|")
}
