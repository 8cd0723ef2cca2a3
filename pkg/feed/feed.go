// Package feed converts between the agenda and the iCalendar wire format:
// exporting an agenda window as an ICS calendar, and importing external ICS
// subscriptions as concrete events.
package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

const defaultMaxOccurrencesPerEvent = 5000

// ParsedEvent is the normalized representation of a VEVENT as produced by
// ParseICS. Recurrence expansion operates on this type.
type ParsedEvent struct {
	UID     string
	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	// RawRRule is the unparsed RRULE value; empty for single events.
	RawRRule string
	ExDates  []time.Time
}

// ExpandConfig controls how external feed expansion is performed.
type ExpandConfig struct {
	// HouseholdID is stamped onto every produced event.
	HouseholdID uuid.UUID

	// Window is the inclusive range occurrences must intersect.
	Window agenda.Window

	// MaxOccurrencesPerEvent caps each series expansion.
	// If zero, a default of 5000 is used.
	MaxOccurrencesPerEvent int

	// Logger is used for structured logging (default: NoopLogger).
	Logger agenda.Logger
}
