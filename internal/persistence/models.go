package persistence

// Document is the full serialized form of the event store: the single-event
// map keyed by date and the recurrence rule list. The field names mirror the
// on-disk layout and must stay stable across versions.
type Document struct {
	SingleEvents  map[string][]EventRecord `json:"single_events"`
	PeriodicRules []RuleRecord             `json:"periodic_rules"`
}

// EventRecord is the serialized shape of a single-occurrence event.
//
// The id field was introduced after the first release; documents written by
// older builds omit it, and loaders assign fresh identifiers in that case.
type EventRecord struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	EventTime   string     `json:"event_time"`
	IsPeriodic  bool       `json:"is_periodic"`
	PeriodInfo  PeriodInfo `json:"period_info,omitzero"`
	CreatedAt   string     `json:"created_at"`
}

// RuleRecord is the serialized shape of a recurrence rule.
type RuleRecord struct {
	EventRecord
	OriginalDate  string   `json:"original_date"`
	ExcludedDates []string `json:"excluded_dates"`
	EndDate       string   `json:"end_date,omitempty"`
}

// PeriodInfo serializes a recurrence pattern: the kind tag plus the fields
// specific to custom-interval and custom-dates patterns.
type PeriodInfo struct {
	Type        string   `json:"type,omitempty"`
	Interval    int      `json:"interval,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	CustomDates []string `json:"custom_dates,omitempty"`
}

// CreatedAtLayout is the timestamp format used for created_at fields.
const CreatedAtLayout = "2006-01-02 15:04:05"

// EmptyDocument returns a document with both collections present but empty,
// the shape written for a fresh store.
func EmptyDocument() Document {
	return Document{
		SingleEvents:  map[string][]EventRecord{},
		PeriodicRules: []RuleRecord{},
	}
}
