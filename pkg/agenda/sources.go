package agenda

import (
	"time"

	"github.com/google/uuid"
)

// exceptionSet indexes removed instances by event id and instance start.
type exceptionSet map[uuid.UUID]map[time.Time]bool

func newExceptionSet(excs []EventException) exceptionSet {
	set := make(exceptionSet, len(excs))
	for _, exc := range excs {
		dates := set[exc.EventID]
		if dates == nil {
			dates = make(map[time.Time]bool)
			set[exc.EventID] = dates
		}
		dates[exc.Date.UTC()] = true
	}
	return set
}

func (s exceptionSet) removed(eventID uuid.UUID, start time.Time) bool {
	return s[eventID][start.UTC()]
}

// eventItems expands one event series into agenda items, dropping instances
// removed by exception records. Truncation is carried by Series.Until.
func eventItems(exp Expander, ev Event, excs exceptionSet, w Window) []Item {
	if ev.Deleted {
		return nil
	}
	series := Series{
		Start:  ev.StartAt,
		End:    ev.EndAt,
		AllDay: ev.AllDay,
		Rule:   ParseRule(ev.Rule),
		Until:  ev.RepeatUntil,
	}

	occs := exp.Expand(series, w)
	items := make([]Item, 0, len(occs))
	for _, occ := range occs {
		if excs.removed(ev.ID, occ.Start) {
			continue
		}
		items = append(items, Item{
			ID:       instanceID(ev.ID, occ.Start),
			Type:     TypeEvent,
			Title:    ev.Title,
			Start:    occ.Start,
			End:      occ.End,
			AllDay:   occ.AllDay,
			SourceID: ev.ID,
		})
	}
	return items
}

// billItems expands a bill's due dates. Bills recur by nature, so an empty
// or malformed rule falls back to monthly on the due day rather than to
// "does not repeat".
func billItems(exp Expander, b Bill, w Window) []Item {
	rule := ParseRule(b.Rule)
	if rule.IsZero() {
		rule = Rule{Freq: FreqMonthly, Interval: 1}
	}

	anchor := billAnchor(b)
	series := Series{
		Start:  anchor,
		End:    anchor,
		AllDay: true,
		Rule:   rule,
	}

	occs := exp.Expand(series, w)
	items := make([]Item, 0, len(occs))
	for _, occ := range occs {
		items = append(items, Item{
			ID:       instanceID(b.ID, occ.Start),
			Type:     TypeBill,
			Title:    b.Name,
			Start:    occ.Start,
			End:      occ.End,
			AllDay:   true,
			SourceID: b.ID,
		})
	}
	return items
}

// billAnchor builds the series anchor from the first due timestamp and the
// nominal due day. The due day wins when the two disagree; months too short
// for it clamp during expansion.
func billAnchor(b Bill) time.Time {
	t := b.FirstDueAt
	if b.DueDay < 1 || b.DueDay > 31 {
		return t
	}
	day := b.DueDay
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// taskItems expands a task's due dates. Tasks without a due timestamp have
// no agenda presence.
func taskItems(exp Expander, t Task, w Window) []Item {
	if t.DueAt == nil || t.Done {
		return nil
	}
	series := Series{
		Start: *t.DueAt,
		End:   *t.DueAt,
		Rule:  ParseRule(t.Rule),
	}

	occs := exp.Expand(series, w)
	items := make([]Item, 0, len(occs))
	for _, occ := range occs {
		items = append(items, Item{
			ID:       instanceID(t.ID, occ.Start),
			Type:     TypeTask,
			Title:    t.Title,
			Start:    occ.Start,
			End:      occ.End,
			SourceID: t.ID,
		})
	}
	return items
}

// birthdayItems expands a contact's birthday as a yearly all-day series
// anchored on the stored month/day. Feb-29 birthdays land on Feb 28 in
// non-leap years via the expander's day clamping.
func birthdayItems(exp Expander, c Contact, w Window) []Item {
	if c.BirthMonth < time.January || c.BirthMonth > time.December || c.BirthDay < 1 || c.BirthDay > 31 {
		return nil
	}

	// Anchor in a known leap year before any reasonable window so Feb 29
	// stays representable; the birth year itself is display metadata.
	year := 1972
	if c.BirthYear != nil {
		year = *c.BirthYear
	}
	anchor := time.Date(year, c.BirthMonth, c.BirthDay, 0, 0, 0, 0, time.UTC)
	if anchor.Month() != c.BirthMonth {
		// The stored day does not exist in the birth year (Feb 29 of a
		// non-leap year); re-anchor in the leap year.
		anchor = time.Date(1972, c.BirthMonth, c.BirthDay, 0, 0, 0, 0, time.UTC)
	}
	series := Series{
		Start:  anchor,
		End:    anchor,
		AllDay: true,
		Rule:   Rule{Freq: FreqYearly, Interval: 1},
	}

	occs := exp.Expand(series, w)
	items := make([]Item, 0, len(occs))
	for _, occ := range occs {
		items = append(items, Item{
			ID:       instanceID(c.ID, occ.Start),
			Type:     TypeBirthday,
			Title:    c.Name,
			Start:    occ.Start,
			End:      occ.End,
			AllDay:   true,
			SourceID: c.ID,
		})
	}
	return items
}
