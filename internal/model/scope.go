package model

import (
	"errors"
	"fmt"
)

// ScopeKind identifies what a scope's ID refers to.
type ScopeKind string

const (
	ScopeVenue ScopeKind = "venue"
	ScopeUser  ScopeKind = "user"
	ScopeAdmin ScopeKind = "admin"
)

// ErrInvalidScope is returned for scopes that cannot be cached or fetched.
var ErrInvalidScope = errors.New("invalid scope")

// Scope is the unit of caching: one venue, one user's venues, or everything.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// VenueScope returns the scope of a single venue.
func VenueScope(venueID string) Scope { return Scope{Kind: ScopeVenue, ID: venueID} }

// UserScope returns the scope of all venues owned by a user.
func UserScope(userID string) Scope { return Scope{Kind: ScopeUser, ID: userID} }

// AdminScope returns the catalog-wide scope.
func AdminScope() Scope { return Scope{Kind: ScopeAdmin} }

// ParseScope builds a scope from its kind and id path segments.
func ParseScope(kind, id string) (Scope, error) {
	s := Scope{Kind: ScopeKind(kind), ID: id}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

// Validate checks the kind is known and the id is present where needed.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeVenue, ScopeUser:
		if s.ID == "" {
			return fmt.Errorf("%w: %s scope requires an id", ErrInvalidScope, s.Kind)
		}
		return nil
	case ScopeAdmin:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScope, s.Kind)
	}
}

func (s Scope) String() string {
	if s.Kind == ScopeAdmin {
		return string(ScopeAdmin)
	}
	return string(s.Kind) + ":" + s.ID
}

// TimeFrame is the coarse server-side time partition of a fetch.
type TimeFrame string

const (
	TimeFrameAll      TimeFrame = "all"
	TimeFramePast     TimeFrame = "past"
	TimeFrameUpcoming TimeFrame = "upcoming"
)

// ParseTimeFrame maps an empty string to TimeFrameAll.
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch tf := TimeFrame(s); tf {
	case "":
		return TimeFrameAll, nil
	case TimeFrameAll, TimeFramePast, TimeFrameUpcoming:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown time frame %q", s)
	}
}

// Contains reports whether an event on day d belongs to the frame, given today.
// Events happening today count as upcoming.
func (tf TimeFrame) Contains(d, today Date) bool {
	switch tf {
	case TimeFramePast:
		return d.Before(today)
	case TimeFrameUpcoming:
		return !d.Before(today)
	default:
		return true
	}
}
