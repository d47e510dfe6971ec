package notify

import (
	"encoding/json"
	"time"

	"homekeeper/internal/domain"
)

// Component is a calendar field a trigger matches on
type Component string

const (
	ComponentYear    Component = "year"
	ComponentMonth   Component = "month"
	ComponentDay     Component = "day"
	ComponentWeekday Component = "weekday"
	ComponentHour    Component = "hour"
	ComponentMinute  Component = "minute"
)

// biweeklyInterval is the spacing of biweekly occurrences, counted from the anchor
const biweeklyInterval = 14

// monthlySearchLimit bounds the search for a month that has the anchor's day
const monthlySearchLimit = 48

// Trigger describes when a reminder fires. The anchor is the task's due
// date; which of its fields matter depends on the recurrence.
type Trigger struct {
	Recurrence domain.Recurrence `json:"recurrence,omitempty"`
	Anchor     time.Time         `json:"anchor"`
	Components []Component       `json:"components"`
	// IntervalDays is set for triggers that skip occurrences, e.g. 14 for biweekly
	IntervalDays int `json:"intervalDays,omitempty"`
}

type triggerAlias Trigger

type triggerJSON struct {
	triggerAlias
	// Zone is the IANA name of the anchor's location. RFC 3339 keeps only
	// the offset, which would lose daylight-saving transitions.
	Zone string `json:"zone,omitempty"`
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(triggerJSON{triggerAlias: triggerAlias(t), Zone: t.Anchor.Location().String()})
}

// UnmarshalJSON restores the anchor's location from its zone name. An
// unknown zone keeps the fixed offset.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var raw triggerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Trigger(raw.triggerAlias)
	if raw.Zone != "" {
		if loc, err := time.LoadLocation(raw.Zone); err == nil {
			t.Anchor = t.Anchor.In(loc)
		}
	}
	return nil
}

// TriggerFor builds the trigger for a recurrence anchored at due
func TriggerFor(recurrence domain.Recurrence, due time.Time) Trigger {
	t := Trigger{Recurrence: recurrence, Anchor: due}

	switch recurrence {
	case domain.RecurrenceDaily:
		t.Components = []Component{ComponentHour, ComponentMinute}
	case domain.RecurrenceWeekly:
		t.Components = []Component{ComponentWeekday, ComponentHour, ComponentMinute}
	case domain.RecurrenceBiweekly:
		t.Components = []Component{ComponentWeekday, ComponentHour, ComponentMinute}
		t.IntervalDays = biweeklyInterval
	case domain.RecurrenceMonthly:
		t.Components = []Component{ComponentDay, ComponentHour, ComponentMinute}
	default:
		t.Recurrence = domain.RecurrenceNone
		t.Components = []Component{ComponentYear, ComponentMonth, ComponentDay, ComponentHour, ComponentMinute}
	}

	return t
}

// Repeats reports whether the trigger fires more than once
func (t Trigger) Repeats() bool {
	return t.Recurrence != domain.RecurrenceNone
}

// Next returns the first fire time strictly after the given instant. A
// one-shot trigger whose moment has passed returns false.
func (t Trigger) Next(after time.Time) (time.Time, bool) {
	loc := t.Anchor.Location()
	after = after.In(loc)
	hour, minute := t.Anchor.Hour(), t.Anchor.Minute()

	at := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, hour, minute, 0, 0, loc)
	}

	switch t.Recurrence {
	case domain.RecurrenceDaily:
		next := at(after.Year(), after.Month(), after.Day())
		if !next.After(after) {
			next = at(after.Year(), after.Month(), after.Day()+1)
		}
		return next, true

	case domain.RecurrenceWeekly:
		offset := (int(t.Anchor.Weekday()) - int(after.Weekday()) + 7) % 7
		next := at(after.Year(), after.Month(), after.Day()+offset)
		if !next.After(after) {
			next = at(after.Year(), after.Month(), after.Day()+offset+7)
		}
		return next, true

	case domain.RecurrenceBiweekly:
		interval := t.IntervalDays
		if interval <= 0 {
			interval = biweeklyInterval
		}
		k := floorDiv(daysBetween(t.Anchor, after), interval)
		for {
			next := at(t.Anchor.Year(), t.Anchor.Month(), t.Anchor.Day()+k*interval)
			if next.After(after) {
				return next, true
			}
			k++
		}

	case domain.RecurrenceMonthly:
		day := t.Anchor.Day()
		for i := 0; i <= monthlySearchLimit; i++ {
			month := time.Date(after.Year(), after.Month()+time.Month(i), 1, 0, 0, 0, 0, loc)
			next := at(month.Year(), month.Month(), day)
			if next.Month() != month.Month() {
				continue
			}
			if next.After(after) {
				return next, true
			}
		}
		return time.Time{}, false

	default:
		next := at(t.Anchor.Year(), t.Anchor.Month(), t.Anchor.Day())
		if next.After(after) {
			return next, true
		}
		return time.Time{}, false
	}
}

// daysBetween counts calendar days from a to b, ignoring the time of day
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
