package persistence

import (
	"sort"
	"time"

	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/recurrence"
)

// FromState serializes the store's collections into a document. Set-valued
// fields are emitted in sorted order so repeated saves of the same state are
// byte-identical.
func FromState(singles map[string][]event.SingleEvent, rules []event.Rule) Document {
	doc := EmptyDocument()

	for key, bucket := range singles {
		records := make([]EventRecord, 0, len(bucket))
		for _, single := range bucket {
			records = append(records, eventToRecord(single))
		}
		doc.SingleEvents[key] = records
	}

	for _, rule := range rules {
		doc.PeriodicRules = append(doc.PeriodicRules, ruleToRecord(rule))
	}

	return doc
}

// ToState deserializes a document into the store's collections. Records
// without an id receive one from newID; malformed dates and unknown pattern
// tags are tolerated so a partially damaged document still loads.
func (d Document) ToState(newID func() string) (map[string][]event.SingleEvent, []event.Rule) {
	singles := make(map[string][]event.SingleEvent, len(d.SingleEvents))
	for key, records := range d.SingleEvents {
		if len(records) == 0 {
			continue
		}
		bucket := make([]event.SingleEvent, 0, len(records))
		for _, record := range records {
			bucket = append(bucket, recordToEvent(record, newID))
		}
		singles[key] = bucket
	}

	rules := make([]event.Rule, 0, len(d.PeriodicRules))
	for _, record := range d.PeriodicRules {
		rules = append(rules, recordToRule(record, newID))
	}

	return singles, rules
}

func eventToRecord(single event.SingleEvent) EventRecord {
	return EventRecord{
		ID:          single.ID,
		Title:       single.Title,
		Category:    string(single.Category),
		Description: single.Description,
		EventTime:   string(single.Slot),
		IsPeriodic:  false,
		CreatedAt:   formatCreatedAt(single.CreatedAt),
	}
}

func ruleToRecord(rule event.Rule) RuleRecord {
	record := RuleRecord{
		EventRecord: EventRecord{
			ID:          rule.ID,
			Title:       rule.Title,
			Category:    string(rule.Category),
			Description: rule.Description,
			EventTime:   string(rule.Slot),
			IsPeriodic:  true,
			PeriodInfo:  patternToInfo(rule.Pattern),
			CreatedAt:   formatCreatedAt(rule.CreatedAt),
		},
		OriginalDate:  recurrence.DateKey(rule.StartsOn),
		ExcludedDates: sortedKeys(rule.Excluded),
	}
	if rule.EndsOn != nil {
		record.EndDate = recurrence.DateKey(*rule.EndsOn)
	}
	return record
}

func recordToEvent(record EventRecord, newID func() string) event.SingleEvent {
	return event.SingleEvent{
		ID: ensureID(record.ID, newID),
		Details: event.Details{
			Title:       record.Title,
			Category:    event.Category(record.Category),
			Description: record.Description,
			Slot:        slotOrAllDay(record.EventTime),
		},
		CreatedAt: parseCreatedAt(record.CreatedAt),
	}
}

func recordToRule(record RuleRecord, newID func() string) event.Rule {
	rule := event.Rule{
		ID: ensureID(record.ID, newID),
		Details: event.Details{
			Title:       record.Title,
			Category:    event.Category(record.Category),
			Description: record.Description,
			Slot:        slotOrAllDay(record.EventTime),
		},
		Pattern:   infoToPattern(record.PeriodInfo),
		Excluded:  keySet(record.ExcludedDates),
		CreatedAt: parseCreatedAt(record.CreatedAt),
	}
	if starts, err := recurrence.ParseDateKey(record.OriginalDate); err == nil {
		rule.StartsOn = starts
	}
	if record.EndDate != "" {
		if end, err := recurrence.ParseDateKey(record.EndDate); err == nil {
			rule.EndsOn = &end
		}
	}
	return rule
}

func patternToInfo(pattern recurrence.Pattern) PeriodInfo {
	info := PeriodInfo{Type: pattern.Kind.String()}
	switch pattern.Kind {
	case recurrence.KindCustomInterval:
		info.Interval = pattern.Interval
		info.Unit = string(pattern.Unit)
	case recurrence.KindCustomDates:
		info.CustomDates = sortedKeys(pattern.Dates)
	}
	return info
}

func infoToPattern(info PeriodInfo) recurrence.Pattern {
	pattern := recurrence.Pattern{Kind: recurrence.KindFromName(info.Type)}
	switch pattern.Kind {
	case recurrence.KindCustomInterval:
		pattern.Interval = info.Interval
		pattern.Unit = recurrence.Unit(info.Unit)
	case recurrence.KindCustomDates:
		pattern.Dates = keySet(info.CustomDates)
	}
	return pattern
}

func ensureID(id string, newID func() string) string {
	if id != "" || newID == nil {
		return id
	}
	return newID()
}

func slotOrAllDay(label string) event.TimeSlot {
	slot := event.TimeSlot(label)
	if !slot.Valid() {
		return event.AllDay
	}
	return slot
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CreatedAtLayout)
}

func parseCreatedAt(value string) time.Time {
	t, err := time.Parse(CreatedAtLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
