package agenda

import (
	"reflect"
	"testing"
	"time"
)

func TestParseRule_Supported(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Rule
	}{
		{"daily", "FREQ=DAILY", Rule{Freq: FreqDaily, Interval: 1}},
		{"daily interval", "FREQ=DAILY;INTERVAL=3", Rule{Freq: FreqDaily, Interval: 3}},
		{"weekly", "FREQ=WEEKLY", Rule{Freq: FreqWeekly, Interval: 1}},
		{"weekly byday", "FREQ=WEEKLY;BYDAY=MO,WE,FR",
			Rule{Freq: FreqWeekly, Interval: 1, ByDay: []time.Weekday{time.Monday, time.Wednesday, time.Friday}}},
		{"byday order insensitive", "FREQ=WEEKLY;BYDAY=FR,MO,WE",
			Rule{Freq: FreqWeekly, Interval: 1, ByDay: []time.Weekday{time.Monday, time.Wednesday, time.Friday}}},
		{"byday dedup", "FREQ=WEEKLY;BYDAY=MO,MO",
			Rule{Freq: FreqWeekly, Interval: 1, ByDay: []time.Weekday{time.Monday}}},
		{"monthly", "FREQ=MONTHLY", Rule{Freq: FreqMonthly, Interval: 1}},
		{"yearly", "FREQ=YEARLY", Rule{Freq: FreqYearly, Interval: 1}},
		{"rrule prefix", "RRULE:FREQ=DAILY", Rule{Freq: FreqDaily, Interval: 1}},
		{"lowercase", "freq=weekly;byday=sa,su",
			Rule{Freq: FreqWeekly, Interval: 1, ByDay: []time.Weekday{time.Sunday, time.Saturday}}},
		{"whitespace", "  FREQ=DAILY ; INTERVAL=2  ", Rule{Freq: FreqDaily, Interval: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRule(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRule(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseRule_MalformedMeansNoRepeat(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unknown freq", "FREQ=HOURLY"},
		{"missing freq", "INTERVAL=2"},
		{"unknown key", "FREQ=DAILY;COUNT=10"},
		{"until unsupported", "FREQ=DAILY;UNTIL=20261231T000000Z"},
		{"bad interval", "FREQ=DAILY;INTERVAL=abc"},
		{"zero interval", "FREQ=DAILY;INTERVAL=0"},
		{"negative interval", "FREQ=DAILY;INTERVAL=-1"},
		{"bad byday code", "FREQ=WEEKLY;BYDAY=MO,XX"},
		{"byday outside weekly", "FREQ=MONTHLY;BYDAY=MO"},
		{"empty byday", "FREQ=WEEKLY;BYDAY="},
		{"no equals", "FREQ"},
		{"garbage", "every other tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRule(tt.text)
			if !got.IsZero() {
				t.Errorf("ParseRule(%q) = %+v, want zero rule", tt.text, got)
			}
		})
	}
}
