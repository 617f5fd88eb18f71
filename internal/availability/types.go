// Package availability computes bookable meeting slots for a host or a group
// of hosts on a given day.
//
// A computation runs four phases in order: the working-hours window for the
// date is resolved from the scope's weekly schedule, every participant's busy
// intervals are collected concurrently from their calendar provider, the window
// is tiled into candidate slots, and each slot is decided under the ALL or ANY
// policy. Only the collection phase does I/O.
package availability

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Policy combines the availability of several participants into one decision.
type Policy string

const (
	// PolicyAll requires every participant to be free ("and").
	PolicyAll Policy = "and"
	// PolicyAny requires at least one participant to be free ("or").
	PolicyAny Policy = "or"
)

// ParsePolicy accepts "and"/"all" and "or"/"any", case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "all":
		return PolicyAll, nil
	case "or", "any":
		return PolicyAny, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// ScopeKind tells whose schedule configuration applies.
type ScopeKind string

const (
	ScopeUser      ScopeKind = "user"
	ScopeWorkspace ScopeKind = "workspace"
)

// Scope identifies the entity whose weekly schedule is used.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func (s Scope) String() string { return string(s.Kind) + ":" + s.ID }

// BusyInterval is a half-open range [Start, End) in which a participant
// cannot be booked.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval carries information. Intervals with a
// zero bound or Start >= End never produce conflicts.
func (b BusyInterval) Valid() bool {
	return !b.Start.IsZero() && !b.End.IsZero() && b.Start.Before(b.End)
}

// ParticipantAvailability holds the busy intervals collected for one
// participant for one day. Interval order is irrelevant.
type ParticipantAvailability struct {
	ParticipantID string
	Busy          []BusyInterval
}

// Slot is a candidate booking range [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

// ProviderKind names the calendar backend a credential belongs to.
type ProviderKind string

const (
	ProviderGoogle ProviderKind = "google"
	ProviderICS    ProviderKind = "ics"
)

// Credential is the stored calendar access for one participant.
type Credential struct {
	ParticipantID string
	Provider      ProviderKind
	AccessToken   string
	RefreshToken  string
	Expiry        time.Time
	FeedURL       string
}

// ScheduleConfig is the stored weekly configuration of a scope. A nil
// OffsetMinutes means the system default offset applies.
type ScheduleConfig struct {
	Days          WeeklySchedule
	OffsetMinutes *int
}

// ScheduleStore reads weekly schedule configuration. It returns (nil, nil)
// when the scope has no stored configuration.
type ScheduleStore interface {
	ScheduleConfig(ctx context.Context, scope Scope) (*ScheduleConfig, error)
}

// CredentialStore maps participants to calendar credentials. It returns
// (nil, nil) when the participant has none.
type CredentialStore interface {
	Credential(ctx context.Context, participantID string) (*Credential, error)
}

// CalendarProvider returns the busy intervals of a participant's primary
// calendar within [start, end].
type CalendarProvider interface {
	BusyIntervals(ctx context.Context, cred Credential, start, end time.Time) ([]BusyInterval, error)
}
