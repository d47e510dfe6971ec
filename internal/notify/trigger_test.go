package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"homekeeper/internal/domain"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestTriggerForComponents(t *testing.T) {
	due := at(2025, 3, 10, 9, 30)

	tests := []struct {
		recurrence domain.Recurrence
		want       []Component
		repeats    bool
		interval   int
	}{
		{domain.RecurrenceNone, []Component{ComponentYear, ComponentMonth, ComponentDay, ComponentHour, ComponentMinute}, false, 0},
		{domain.RecurrenceDaily, []Component{ComponentHour, ComponentMinute}, true, 0},
		{domain.RecurrenceWeekly, []Component{ComponentWeekday, ComponentHour, ComponentMinute}, true, 0},
		{domain.RecurrenceBiweekly, []Component{ComponentWeekday, ComponentHour, ComponentMinute}, true, 14},
		{domain.RecurrenceMonthly, []Component{ComponentDay, ComponentHour, ComponentMinute}, true, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.recurrence), func(t *testing.T) {
			trigger := TriggerFor(tt.recurrence, due)

			if len(trigger.Components) != len(tt.want) {
				t.Fatalf("Expected components %v, got %v", tt.want, trigger.Components)
			}
			for i := range tt.want {
				if trigger.Components[i] != tt.want[i] {
					t.Errorf("Expected components %v, got %v", tt.want, trigger.Components)
				}
			}
			if trigger.Repeats() != tt.repeats {
				t.Errorf("Expected repeats=%v", tt.repeats)
			}
			if trigger.IntervalDays != tt.interval {
				t.Errorf("Expected interval %d, got %d", tt.interval, trigger.IntervalDays)
			}
		})
	}
}

func TestTriggerNext(t *testing.T) {
	// 2025-03-10 is a Monday
	due := at(2025, 3, 10, 9, 30)

	tests := []struct {
		name       string
		recurrence domain.Recurrence
		anchor     time.Time
		after      time.Time
		want       time.Time
		ok         bool
	}{
		{"one-shot in future", domain.RecurrenceNone, due, at(2025, 3, 1, 0, 0), due, true},
		{"one-shot passed", domain.RecurrenceNone, due, at(2025, 3, 11, 0, 0), time.Time{}, false},
		{"daily later today", domain.RecurrenceDaily, due, at(2025, 3, 20, 8, 0), at(2025, 3, 20, 9, 30), true},
		{"daily tomorrow", domain.RecurrenceDaily, due, at(2025, 3, 20, 10, 0), at(2025, 3, 21, 9, 30), true},
		{"weekly next monday", domain.RecurrenceWeekly, due, at(2025, 3, 12, 12, 0), at(2025, 3, 17, 9, 30), true},
		{"weekly exact time moves on", domain.RecurrenceWeekly, due, at(2025, 3, 17, 9, 30), at(2025, 3, 24, 9, 30), true},
		{"biweekly skips a week", domain.RecurrenceBiweekly, due, at(2025, 3, 12, 12, 0), at(2025, 3, 24, 9, 30), true},
		{"biweekly after occurrence", domain.RecurrenceBiweekly, due, at(2025, 3, 24, 9, 30), at(2025, 4, 7, 9, 30), true},
		{"biweekly before anchor", domain.RecurrenceBiweekly, due, at(2025, 3, 1, 0, 0), due, true},
		{"monthly skips short month", domain.RecurrenceMonthly, at(2025, 1, 31, 9, 0), at(2025, 2, 1, 0, 0), at(2025, 3, 31, 9, 0), true},
		{"monthly skips april", domain.RecurrenceMonthly, at(2025, 1, 31, 9, 0), at(2025, 3, 31, 10, 0), at(2025, 5, 31, 9, 0), true},
		{"monthly same month", domain.RecurrenceMonthly, at(2025, 1, 15, 9, 0), at(2025, 6, 2, 0, 0), at(2025, 6, 15, 9, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TriggerFor(tt.recurrence, tt.anchor).Next(tt.after)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProperty_RepeatingTriggersFireAfterAndKeepTime(t *testing.T) {
	properties := gopter.NewProperties(nil)

	recurrences := []domain.Recurrence{
		domain.RecurrenceDaily,
		domain.RecurrenceWeekly,
		domain.RecurrenceBiweekly,
		domain.RecurrenceMonthly,
	}

	properties.Property("next fire is after the instant at the anchor's time of day", prop.ForAll(
		func(idx int, anchorOffset int64, afterOffset int64) bool {
			base := at(2024, 1, 1, 0, 0)
			anchor := base.Add(time.Duration(anchorOffset) * time.Minute)
			after := base.Add(time.Duration(afterOffset) * time.Minute)
			trigger := TriggerFor(recurrences[idx], anchor)

			next, ok := trigger.Next(after)
			if !ok || !next.After(after) {
				return false
			}
			if next.Hour() != anchor.Hour() || next.Minute() != anchor.Minute() {
				return false
			}

			switch trigger.Recurrence {
			case domain.RecurrenceWeekly:
				return next.Weekday() == anchor.Weekday() && next.Sub(after) <= 7*24*time.Hour
			case domain.RecurrenceBiweekly:
				return daysBetween(anchor, next)%14 == 0 && next.Sub(after) <= 14*24*time.Hour
			case domain.RecurrenceMonthly:
				return next.Day() == anchor.Day()
			default:
				return next.Sub(after) <= 24*time.Hour
			}
		},
		gen.IntRange(0, len(recurrences)-1),
		gen.Int64Range(0, 2*365*24*60),
		gen.Int64Range(0, 3*365*24*60),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	return loc
}

func TestTriggerJSONKeepsZone(t *testing.T) {
	ny := newYork(t)
	trigger := TriggerFor(domain.RecurrenceWeekly, time.Date(2025, 3, 3, 9, 0, 0, 0, ny))

	data, err := json.Marshal(trigger)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Trigger
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Anchor.Location().String() != "America/New_York" {
		t.Fatalf("Expected zone to survive, got %s", decoded.Anchor.Location())
	}
	if !decoded.Anchor.Equal(trigger.Anchor) || decoded.IntervalDays != trigger.IntervalDays || len(decoded.Components) != 3 {
		t.Errorf("Unexpected decoded trigger %+v", decoded)
	}

	// 03-09 is the spring-forward Sunday; the wall-clock hour must hold
	next, ok := decoded.Next(time.Date(2025, 3, 3, 9, 0, 0, 0, ny))
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, ny)
	if !ok || !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestTriggerJSONUnknownZoneKeepsOffset(t *testing.T) {
	data := []byte(`{"recurrence":"daily","anchor":"2025-03-03T09:00:00+09:00","components":["hour","minute"],"zone":"Nowhere/Special"}`)

	var decoded Trigger
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, offset := decoded.Anchor.Zone(); offset != 9*3600 {
		t.Errorf("Expected +09:00 offset, got %d", offset)
	}
	if decoded.Recurrence != domain.RecurrenceDaily {
		t.Errorf("Unexpected recurrence %s", decoded.Recurrence)
	}
}
