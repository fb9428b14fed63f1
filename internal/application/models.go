package application

import (
	"time"

	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/recurrence"
)

// Occurrence is a concrete event instance resolved onto one calendar date,
// whether stored directly or produced by a recurrence rule.
type Occurrence struct {
	// SourceID identifies the record that produced the occurrence: a single
	// event's id, or the owning rule's id for recurring occurrences.
	SourceID string
	// Date is the calendar day the occurrence falls on.
	Date time.Time
	event.Details
	CreatedAt time.Time
	// Recurring reports whether the occurrence came from a rule.
	Recurring bool
	// PatternKind names the rule's recurrence kind; zero for single events.
	PatternKind recurrence.Kind
}

// DateKey returns the canonical key of the occurrence's date.
func (o Occurrence) DateKey() string {
	return recurrence.DateKey(o.Date)
}

// EventInput captures caller-provided fields for a single event.
type EventInput struct {
	Date        time.Time
	Title       string
	Category    event.Category
	Description string
	Slot        event.TimeSlot
}

// RuleInput captures caller-provided fields for a recurrence rule. Date is
// the rule's start date and first possible occurrence.
type RuleInput struct {
	Date        time.Time
	Title       string
	Category    event.Category
	Description string
	Slot        event.TimeSlot
	Pattern     recurrence.Pattern
}

// DetailsInput captures the editable fields shared by events and rules.
type DetailsInput struct {
	Title       string
	Category    event.Category
	Description string
	Slot        event.TimeSlot
}
