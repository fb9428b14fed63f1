// Package ics renders a date range of the event store as an iCalendar
// document so external calendar clients can subscribe to it.
package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/recurrence"
)

const productID = "-//personal-calendar//EN"

// DaySource yields the occurrences scheduled on a single date.
type DaySource func(date time.Time) []application.Occurrence

// Export walks every day from from to to inclusive and serializes the
// occurrences as VEVENT entries. Recurring rules are emitted as one event per
// matched day, which keeps exclusions and detached occurrences exact without
// translating patterns to RRULE clauses.
func Export(source DaySource, from, to time.Time) (string, error) {
	if source == nil {
		return "", errors.New("nil occurrence source")
	}
	if to.Before(from) {
		return "", fmt.Errorf("invalid export range: %s is after %s", recurrence.DateKey(from), recurrence.DateKey(to))
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, occ := range source(day) {
			addEvent(cal, occ, day)
		}
	}

	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, occ application.Occurrence, day time.Time) {
	// One VEVENT per occurrence per day, so the UID carries the date.
	uid := fmt.Sprintf("%s-%s@personal-calendar", occ.SourceID, recurrence.DateKey(day))
	ev := cal.AddEvent(uid)

	stamp := occ.CreatedAt
	if stamp.IsZero() {
		stamp = day
	}
	ev.SetDtStampTime(stamp.UTC())
	ev.SetSummary(occ.Title)
	if occ.Description != "" {
		ev.SetDescription(occ.Description)
	}
	if occ.Category != "" {
		ev.SetProperty(ical.ComponentPropertyCategories, string(occ.Category))
	}

	start, end, timed := occ.Slot.Range()
	if !timed {
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		return
	}
	ev.SetStartAt(atClock(day, start))
	ev.SetEndAt(atClock(day, end))
}

func atClock(day time.Time, clock string) time.Time {
	// The last slot ends on the "24:00" label, which is midnight next day.
	if clock == "24:00" {
		return day.AddDate(0, 0, 1)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
