package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/event"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestExport(t *testing.T) {
	t.Parallel()

	source := func(date time.Time) []application.Occurrence {
		switch date.Day() {
		case 15:
			return []application.Occurrence{{
				SourceID: "ev-1",
				Date:     date,
				Details: event.Details{
					Title:       "dentist",
					Category:    event.CategoryPersonal,
					Description: "bring insurance card",
					Slot:        event.TimeSlot("08:00-10:00"),
				},
			}}
		case 16:
			return []application.Occurrence{{
				SourceID: "rule-1",
				Date:     date,
				Details: event.Details{
					Title: "holiday",
					Slot:  event.AllDay,
				},
				Recurring: true,
			}}
		default:
			return nil
		}
	}

	out, err := Export(source, day(14), day(17))
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"UID:ev-1-2024-03-15@personal-calendar",
		"SUMMARY:dentist",
		"DESCRIPTION:bring insurance card",
		"DTSTART:20240315T080000Z",
		"DTEND:20240315T100000Z",
		"UID:rule-1-2024-03-16@personal-calendar",
		"SUMMARY:holiday",
		"DTSTART;VALUE=DATE:20240316",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
}

func TestExport_RejectsInvertedRanges(t *testing.T) {
	t.Parallel()

	source := func(time.Time) []application.Occurrence { return nil }
	if _, err := Export(source, day(17), day(14)); err == nil {
		t.Fatal("expected an error for an inverted range")
	}
}

func TestExport_LastSlotEndsAtMidnight(t *testing.T) {
	t.Parallel()

	source := func(date time.Time) []application.Occurrence {
		if date.Day() != 15 {
			return nil
		}
		return []application.Occurrence{{
			SourceID: "ev-1",
			Date:     date,
			Details:  event.Details{Title: "late shift", Slot: event.TimeSlot("22:00-24:00")},
		}}
	}

	out, err := Export(source, day(15), day(15))
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !strings.Contains(out, "DTEND:20240316T000000Z") {
		t.Fatalf("expected the 24:00 label to roll into the next day\n%s", out)
	}
}
