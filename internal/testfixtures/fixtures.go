// Package testfixtures offers deterministic clocks, identifier generators and
// prebuilt calendar records shared across test suites.
package testfixtures

import (
	"time"

	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/recurrence"
)

// ReferenceTime returns the instant used as the default "now" in tests.
func ReferenceTime() time.Time {
	return time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
}

// ReferenceDate returns ReferenceTime truncated to midnight UTC, matching the
// day granularity the matcher operates on.
func ReferenceDate() time.Time {
	ref := ReferenceTime()
	return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
}

// SingleEvent builds a stored event on the given date with sensible defaults.
func SingleEvent(id, title string) event.SingleEvent {
	return event.SingleEvent{
		ID: id,
		Details: event.Details{
			Title:    title,
			Category: event.CategoryDaily,
			Slot:     event.AllDay,
		},
		CreatedAt: ReferenceTime(),
	}
}

// DailyRule builds a recurrence rule starting on the provided date that
// matches every day.
func DailyRule(id, title string, startsOn time.Time) event.Rule {
	return event.Rule{
		ID: id,
		Details: event.Details{
			Title:    title,
			Category: event.CategoryWork,
			Slot:     event.AllDay,
		},
		StartsOn:  startsOn,
		Excluded:  map[string]struct{}{},
		Pattern:   recurrence.Pattern{Kind: recurrence.KindDaily},
		CreatedAt: ReferenceTime(),
	}
}
