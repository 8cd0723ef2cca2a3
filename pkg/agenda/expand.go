package agenda

import "time"

const defaultMaxOccurrences = 1000

// Series is the input to recurrence expansion: an anchor interval plus a
// parsed rule. Sources project their entities into this shape.
type Series struct {
	Start  time.Time
	End    time.Time
	AllDay bool
	Rule   Rule

	// Until is the exclusive series end (this_and_future truncation).
	// Occurrences starting at or after it are not produced.
	Until *time.Time
}

// Expander turns a series into the bounded set of concrete occurrences
// inside a query window. Expansion always terminates at the window end even
// for infinite rules, with MaxOccurrences as a second safety bound.
type Expander struct {
	// MaxOccurrences caps the per-series output. Zero means the default.
	MaxOccurrences int
}

// Expand produces every occurrence of the series intersecting the closed
// window, in chronological order. The anchor's duration is preserved for
// every occurrence; all-day series carry dates only. A zero rule yields the
// anchor occurrence iff it intersects the window.
func (e Expander) Expand(s Series, w Window) []Occurrence {
	if !w.Valid() {
		return nil
	}

	limit := e.MaxOccurrences
	if limit <= 0 {
		limit = defaultMaxOccurrences
	}

	if s.Rule.IsZero() {
		occ := s.occurrenceAt(s.Start)
		if s.admits(occ, w) {
			return []Occurrence{occ}
		}
		return nil
	}

	switch s.Rule.Freq {
	case FreqDaily:
		return s.expandByDays(w, limit, s.Rule.Interval)
	case FreqWeekly:
		return s.expandWeekly(w, limit)
	case FreqMonthly:
		return s.expandByMonths(w, limit, s.Rule.Interval)
	case FreqYearly:
		return s.expandByMonths(w, limit, 12*s.Rule.Interval)
	default:
		return nil
	}
}

// occurrenceAt materializes one occurrence starting at the given instant.
func (s Series) occurrenceAt(start time.Time) Occurrence {
	if s.AllDay {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return Occurrence{Start: day, End: day.AddDate(0, 0, 1), AllDay: true}
	}
	dur := s.End.Sub(s.Start)
	if dur < 0 {
		dur = 0
	}
	return Occurrence{Start: start, End: start.Add(dur)}
}

// admits applies the window-intersection and truncation filters.
func (s Series) admits(occ Occurrence, w Window) bool {
	if s.Until != nil && !occ.Start.Before(*s.Until) {
		return false
	}
	return w.Intersects(occ.Start, occ.End)
}

// pastEnd reports whether expansion can stop: starts are monotonically
// increasing, so once one passes the window end (or the truncation point)
// no later occurrence can be admitted.
func (s Series) pastEnd(start time.Time, w Window) bool {
	if start.After(w.End) {
		return true
	}
	return s.Until != nil && !start.Before(*s.Until)
}

// expandByDays handles FREQ=DAILY with an interval in days.
func (s Series) expandByDays(w Window, limit, intervalDays int) []Occurrence {
	var out []Occurrence

	// Jump close to the window instead of walking from the anchor; back off
	// one step so an occurrence overlapping the window start is not missed.
	step := time.Duration(intervalDays) * 24 * time.Hour
	dur := s.End.Sub(s.Start)
	if dur < 0 {
		dur = 0
	}
	n := 0
	if lead := w.Start.Add(-dur).Sub(s.Start); lead > 0 {
		n = int(lead/step) - 1
		if n < 0 {
			n = 0
		}
	}

	for ; len(out) < limit; n++ {
		start := s.Start.AddDate(0, 0, n*intervalDays)
		if s.pastEnd(start, w) {
			break
		}
		if occ := s.occurrenceAt(start); s.admits(occ, w) {
			out = append(out, occ)
		}
	}
	return out
}

// expandWeekly handles FREQ=WEEKLY, emitting occurrences on each weekday in
// the BYDAY set (or the anchor's weekday) at the anchor's time-of-day, in
// weeks that match the interval counted from the anchor's week.
func (s Series) expandWeekly(w Window, limit int) []Occurrence {
	var out []Occurrence

	interval := s.Rule.Interval
	byDay := s.Rule.ByDay
	if len(byDay) == 0 {
		byDay = []time.Weekday{s.Start.Weekday()}
	}
	days := [7]bool{}
	for _, d := range byDay {
		days[d] = true
	}

	anchorDay := midnight(s.Start)
	dur := s.End.Sub(s.Start)
	if dur < 0 {
		dur = 0
	}
	// Back the scan off by the series duration so a multi-day occurrence
	// overlapping the window start is not missed, plus a day of slack for
	// the time-of-day offset.
	from := midnight(w.Start.Add(-dur)).AddDate(0, 0, -1)
	if from.Before(anchorDay) {
		from = anchorDay
	}

	for d := from; len(out) < limit; d = d.AddDate(0, 0, 1) {
		start := at(d, s.Start)
		if s.pastEnd(start, w) {
			break
		}
		if !days[d.Weekday()] {
			continue
		}
		if interval > 1 && weeksBetween(anchorDay, d)%interval != 0 {
			continue
		}
		if occ := s.occurrenceAt(start); s.admits(occ, w) {
			out = append(out, occ)
		}
	}
	return out
}

// expandByMonths handles FREQ=MONTHLY and FREQ=YEARLY. The anchor's
// day-of-month is preserved, clamping to the last day of shorter months so
// a day-31 anchor lands on Apr 30 and a Feb-29 anchor lands on Feb 28 in
// non-leap years, instead of the month being skipped.
func (s Series) expandByMonths(w Window, limit, intervalMonths int) []Occurrence {
	var out []Occurrence

	k := 0
	if months := monthsBetween(s.Start, w.Start); months > 0 {
		k = months/intervalMonths - 1
		if k < 0 {
			k = 0
		}
	}

	for ; len(out) < limit; k++ {
		start := addMonthsClamped(s.Start, k*intervalMonths)
		if s.pastEnd(start, w) {
			break
		}
		if occ := s.occurrenceAt(start); s.admits(occ, w) {
			out = append(out, occ)
		}
	}
	return out
}

// addMonthsClamped adds months to a time while preserving the day-of-month
// when possible. When the day does not exist in the target month (Feb 31),
// the last day of that month is used. time.Time.AddDate would overflow into
// the next month instead, which is the wrong policy for due-day schedules.
func addMonthsClamped(base time.Time, months int) time.Time {
	year, month, day := base.Date()
	target := time.Date(year, month+time.Month(months), 1,
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())

	// day=0 of the following month is the last day of the target month.
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, target.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(target.Year(), target.Month(), day,
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
}

// midnight returns 00:00 of t's civil date in t's location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// at combines a civil date with the time-of-day of ref.
func at(day, ref time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), day.Location())
}

// daysBetween counts civil days from a to b. Dates are normalized to UTC
// midnights first so DST transitions cannot skew the division.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

// weeksBetween counts whole weeks between the Monday-start weeks of a and b.
func weeksBetween(a, b time.Time) int {
	return daysBetween(startOfWeek(a), startOfWeek(b)) / 7
}

// startOfWeek returns the Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t).AddDate(0, 0, -offset)
}

// monthsBetween counts whole calendar months from a to b (0 when b <= a).
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months < 0 {
		return 0
	}
	return months
}
