package agenda

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemType identifies which household entity an agenda item was projected from.
type ItemType string

const (
	// TypeEvent is a calendar event occurrence.
	TypeEvent ItemType = "event"
	// TypeBill is a bill due-date occurrence.
	TypeBill ItemType = "bill"
	// TypeTask is a task due-date occurrence.
	TypeTask ItemType = "task"
	// TypeBirthday is a contact birthday/anniversary occurrence.
	TypeBirthday ItemType = "birthday"
)

// priority returns the tie-break rank for equal timestamps.
// Lower sorts first: event > bill > task > birthday.
func (t ItemType) priority() int {
	switch t {
	case TypeEvent:
		return 0
	case TypeBill:
		return 1
	case TypeTask:
		return 2
	case TypeBirthday:
		return 3
	default:
		return 4
	}
}

// Window is a closed query range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the window is usable for expansion.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.End.Before(w.Start)
}

// Intersects reports whether [start, end] overlaps the window.
// Both ranges are closed, per the agenda query contract.
func (w Window) Intersects(start, end time.Time) bool {
	return !start.After(w.End) && !end.Before(w.Start)
}

// Occurrence is one concrete time instance produced by recurrence expansion.
// Occurrences are computed on demand for a query window and never persisted.
type Occurrence struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Item is the common agenda projection shared by all sources.
type Item struct {
	// ID identifies one concrete occurrence; derived from the source entity
	// id and the occurrence start, so it is stable across queries.
	ID       string
	Type     ItemType
	Title    string
	Start    time.Time
	End      time.Time
	AllDay   bool
	SourceID uuid.UUID
}

// instanceID builds the stable per-occurrence identifier.
func instanceID(sourceID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("%s/%s", sourceID, start.UTC().Format(time.RFC3339))
}

// less is the total agenda ordering: start ascending, then type priority,
// then source id for determinism.
func less(a, b Item) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if pa, pb := a.Type.priority(), b.Type.priority(); pa != pb {
		return pa < pb
	}
	return a.SourceID.String() < b.SourceID.String()
}

// Include selects which optional sources participate in aggregation.
// Events are always included.
type Include struct {
	Bills     bool
	Tasks     bool
	Birthdays bool
}

// Event is a calendar event series (or single event when Rule is empty).
type Event struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Title       string
	StartAt     time.Time
	EndAt       time.Time
	AllDay      bool

	// Rule is the raw recurrence text; empty means "does not repeat".
	Rule string

	// RepeatUntil is the exclusive series end set by a this_and_future
	// deletion. Occurrences starting at or after it are not produced.
	RepeatUntil *time.Time

	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventException records the removal of a single instance of a recurring
// event. The series itself stays active for every other instance.
type EventException struct {
	EventID uuid.UUID
	// Date is the start timestamp of the removed instance.
	Date time.Time
}

// Bill is a recurring household payment obligation.
type Bill struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Name        string
	AmountCents int64

	// DueDay is the nominal day-of-month; months with fewer days clamp to
	// their last day instead of skipping.
	DueDay int

	// Rule overrides the default monthly cadence when set.
	Rule string

	// FirstDueAt anchors the series.
	FirstDueAt time.Time
}

// Task is a to-do with an optional due timestamp and optional recurrence.
type Task struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Title       string
	DueAt       *time.Time
	Rule        string
	Done        bool
}

// Contact carries the stored month/day used for yearly birthday expansion.
type Contact struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Name        string
	BirthMonth  time.Month
	BirthDay    int
	// BirthYear is optional; when absent the birthday still recurs yearly.
	BirthYear *int
}

// DeleteMode selects how much of a recurring event series to remove.
type DeleteMode string

const (
	// DeleteThis removes a single instance via an exception record.
	DeleteThis DeleteMode = "this"
	// DeleteThisAndFuture truncates the series just before the instance.
	DeleteThisAndFuture DeleteMode = "this_and_future"
	// DeleteAll removes the whole series and its exceptions.
	DeleteAll DeleteMode = "all"
)

// Subscription identifies an external push-notification channel owned by one
// integration account. Only subscriptions present in storage are acted upon.
type Subscription struct {
	ChannelID  string
	ResourceID string
	Provider   string
	AccountID  uuid.UUID
	ExpiresAt  time.Time
}

// FinanceItem is one linked external financial account with its sync cursor.
type FinanceItem struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Provider    string
	// AccessRef is the provider-side handle (access token reference).
	AccessRef string
	Cursor    string
	Active    bool
}
