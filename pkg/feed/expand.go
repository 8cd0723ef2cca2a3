package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// Expand turns parsed feed events into concrete agenda events inside the
// configured window. Recurring events are expanded with full RRULE semantics
// and EXDATE exceptions honored; events with an unparsable RRULE are logged
// and skipped. Every produced event is non-recurring with a deterministic ID
// derived from the feed UID and occurrence start, so re-imports upsert
// instead of duplicating.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]agenda.Event, error) {
	if !cfg.Window.Valid() {
		return nil, agenda.ErrInvalidWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = &agenda.NoopLogger{}
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	out := make([]agenda.Event, 0)
	for _, ev := range events {
		if ev.RawRRule == "" {
			if cfg.Window.Intersects(ev.Start, ev.End) {
				out = append(out, materialize(ev, ev.Start, cfg))
			}
			continue
		}

		r, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			cfg.Logger.Warn("skipping feed event with unparsable RRULE",
				agenda.Field{Key: "uid", Value: ev.UID},
				agenda.Field{Key: "rrule", Value: ev.RawRRule},
				agenda.Field{Key: "error", Value: err.Error()})
			continue
		}
		r.DTStart(ev.Start)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range ev.ExDates {
			set.ExDate(ex.In(ev.Start.Location()))
		}

		rangeStart := cfg.Window.Start.In(ev.Start.Location())
		rangeEnd := cfg.Window.End.In(ev.Start.Location())
		occurrences := set.Between(rangeStart, rangeEnd, true)
		if len(occurrences) > cfg.MaxOccurrencesPerEvent {
			cfg.Logger.Warn("feed event expansion truncated",
				agenda.Field{Key: "uid", Value: ev.UID},
				agenda.Field{Key: "cap", Value: cfg.MaxOccurrencesPerEvent})
			occurrences = occurrences[:cfg.MaxOccurrencesPerEvent]
		}

		for _, start := range occurrences {
			out = append(out, materialize(ev, start, cfg))
		}
	}
	return out, nil
}

func materialize(ev ParsedEvent, start time.Time, cfg ExpandConfig) agenda.Event {
	var end time.Time
	if ev.AllDay {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		start = day
		end = day.AddDate(0, 0, 1)
	} else {
		end = start.Add(ev.End.Sub(ev.Start))
	}

	id := uuid.NewSHA1(uuid.NameSpaceURL,
		[]byte(ev.UID+"/"+start.UTC().Format(time.RFC3339)))

	return agenda.Event{
		ID:          id,
		HouseholdID: cfg.HouseholdID,
		Title:       ev.Summary,
		StartAt:     start,
		EndAt:       end,
		AllDay:      ev.AllDay,
	}
}
