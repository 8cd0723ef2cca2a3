package agenda

import (
	"strconv"
	"strings"
	"time"
)

// Freq is the recurrence frequency of a parsed rule.
type Freq int

const (
	// FreqNone means the entity does not repeat.
	FreqNone Freq = iota
	// FreqDaily repeats every Interval days.
	FreqDaily
	// FreqWeekly repeats on the ByDay weekdays every Interval weeks.
	FreqWeekly
	// FreqMonthly repeats on the anchor's day-of-month every Interval months.
	FreqMonthly
	// FreqYearly repeats on the anchor's month/day every Interval years.
	FreqYearly
)

// Rule is the tagged parse of recurrence text. The zero value means
// "does not repeat", which is also the fallback for anything ParseRule
// does not understand.
type Rule struct {
	Freq     Freq
	Interval int
	// ByDay is only meaningful for FreqWeekly; empty means the anchor's
	// own weekday.
	ByDay []time.Weekday
}

// IsZero reports whether the rule describes a non-repeating entity.
func (r Rule) IsZero() bool {
	return r.Freq == FreqNone
}

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// ParseRule parses the supported RRULE subset: FREQ (DAILY, WEEKLY, MONTHLY,
// YEARLY), optional INTERVAL, optional BYDAY (WEEKLY only, two-letter codes,
// order-insensitive). Rules are free-form user text, so malformed or
// unrecognized input never fails; it parses to the zero Rule instead.
// Partially honoring a half-understood rule would silently change cadence,
// so any unknown key also falls back to "does not repeat".
func ParseRule(text string) Rule {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "RRULE:")
	if text == "" {
		return Rule{}
	}

	var out Rule
	out.Interval = 1

	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Rule{}
		}

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			switch strings.ToUpper(strings.TrimSpace(value)) {
			case "DAILY":
				out.Freq = FreqDaily
			case "WEEKLY":
				out.Freq = FreqWeekly
			case "MONTHLY":
				out.Freq = FreqMonthly
			case "YEARLY":
				out.Freq = FreqYearly
			default:
				return Rule{}
			}

		case "INTERVAL":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 {
				return Rule{}
			}
			out.Interval = n

		case "BYDAY":
			days, ok := parseByDay(value)
			if !ok {
				return Rule{}
			}
			out.ByDay = days

		default:
			return Rule{}
		}
	}

	if out.Freq == FreqNone {
		return Rule{}
	}
	if len(out.ByDay) > 0 && out.Freq != FreqWeekly {
		return Rule{}
	}
	return out
}

// parseByDay parses a comma-separated weekday code set, deduplicated and
// normalized to Sunday-first order so equal sets compare equal.
func parseByDay(value string) ([]time.Weekday, bool) {
	seen := [7]bool{}
	any := false

	for _, code := range strings.Split(value, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		day, ok := weekdayCodes[code]
		if !ok {
			return nil, false
		}
		seen[day] = true
		any = true
	}
	if !any {
		return nil, false
	}

	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days, true
}

// containsWeekday reports whether the rule's weekday set includes d.
// An empty set means only the anchor's weekday, which callers resolve.
func (r Rule) containsWeekday(d time.Weekday) bool {
	for _, day := range r.ByDay {
		if day == d {
			return true
		}
	}
	return false
}
