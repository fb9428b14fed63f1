package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/persistence"
	"github.com/example/personal-calendar/internal/recurrence"
)

// CalendarService owns the event store: the single-event map keyed by date
// and the recurrence rule list. It is the only writer; reads hand out copies.
// A single mutex serializes access so the service is safe to share between
// an HTTP shell's handlers.
//
// Every mutation persists the full snapshot before returning. A failed save
// keeps the mutation in memory and returns the error alongside a log entry.
type CalendarService struct {
	mu      sync.Mutex
	singles map[string][]event.SingleEvent
	rules   []event.Rule

	snapshots persistence.Store
	newID     func() string
	now       func() time.Time
	logger    *slog.Logger
}

// NewCalendarService wires the store's collaborators. A nil newID falls back
// to UUIDs, a nil now to the wall clock.
func NewCalendarService(snapshots persistence.Store, newID func() string, now func() time.Time, logger *slog.Logger) *CalendarService {
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarService{
		singles:   make(map[string][]event.SingleEvent),
		snapshots: snapshots,
		newID:     newID,
		now:       now,
		logger:    logger,
	}
}

// Load initializes the store from the snapshot sink. A failed or malformed
// load is recovered locally: the store starts empty and the failure goes to
// the log, never to the caller.
func (s *CalendarService) Load(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	doc, err := s.snapshots.Load(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "load").ErrorContext(ctx, "failed to load snapshot, starting empty", "error", err)
		doc = persistence.EmptyDocument()
	}

	singles, rules := doc.ToState(s.newID)

	s.mu.Lock()
	s.singles = singles
	s.rules = rules
	s.mu.Unlock()
}

// OccurrencesOn resolves every occurrence falling on date: the stored bucket
// plus each rule the matcher fires for, ordered by time slot with all-day
// first. Ties keep insertion order, single events before rules.
func (s *CalendarService) OccurrencesOn(date time.Time) []Occurrence {
	key := recurrence.DateKey(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Occurrence, 0, len(s.singles[key]))
	for _, single := range s.singles[key] {
		out = append(out, singleOccurrence(date, single))
	}
	for _, rule := range s.rules {
		if recurrence.Matches(date, rule.Matcher()) {
			out = append(out, ruleOccurrence(date, rule))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Slot.SortKey() < out[j].Slot.SortKey()
	})
	return out
}

// AddEvent stores a new single event under its date.
func (s *CalendarService) AddEvent(ctx context.Context, input EventInput) (Occurrence, error) {
	vErr := &ValidationError{}
	details := s.validateDetails(DetailsInput{
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		Slot:        input.Slot,
	}, vErr)
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		return Occurrence{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	single := s.appendEventLocked(input.Date, details)
	return singleOccurrence(input.Date, single), s.persistLocked(ctx, "add_event")
}

// AddRule stores a new recurrence rule starting (and first firing) on the
// given date.
func (s *CalendarService) AddRule(ctx context.Context, input RuleInput) (Occurrence, error) {
	vErr := &ValidationError{}
	details := s.validateDetails(DetailsInput{
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		Slot:        input.Slot,
	}, vErr)
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	pattern := validatePattern(input.Pattern, vErr)
	if vErr.HasErrors() {
		return Occurrence{}, vErr
	}

	rule := event.Rule{
		ID:        s.newID(),
		Details:   details,
		StartsOn:  dateOnly(input.Date),
		Excluded:  make(map[string]struct{}),
		Pattern:   pattern,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = append(s.rules, rule)
	return ruleOccurrence(input.Date, rule), s.persistLocked(ctx, "add_rule")
}

// DeleteOccurrence removes the occurrence identified by id from date. For a
// single event the record is removed and an emptied bucket pruned; for a
// rule occurrence the date joins the rule's exclusion set and the series
// survives. An unknown id is a logged no-op.
func (s *CalendarService) DeleteOccurrence(ctx context.Context, date time.Time, id string) error {
	key := recurrence.DateKey(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if bucket, ok := s.singles[key]; ok {
		for i, single := range bucket {
			if single.ID != id {
				continue
			}
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(s.singles, key)
			} else {
				s.singles[key] = bucket
			}
			return s.persistLocked(ctx, "delete_occurrence")
		}
	}

	if rule := s.findRuleLocked(id); rule != nil {
		excludeDate(rule, key)
		return s.persistLocked(ctx, "delete_occurrence")
	}

	serviceLogger(ctx, s.logger, "delete_occurrence").WarnContext(ctx, "occurrence not found, nothing deleted", "id", id, "date", key)
	return nil
}

// DeleteSeriesFrom truncates a series: no occurrence on date or after it.
// The end date is recorded and date itself excluded, since the end bound
// alone would still let the cut date match. An unknown id is a logged no-op.
func (s *CalendarService) DeleteSeriesFrom(ctx context.Context, date time.Time, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule := s.findRuleLocked(ruleID)
	if rule == nil {
		serviceLogger(ctx, s.logger, "delete_series_from").WarnContext(ctx, "rule not found, nothing deleted", "id", ruleID)
		return nil
	}

	end := dateOnly(date)
	rule.EndsOn = &end
	excludeDate(rule, recurrence.DateKey(date))
	return s.persistLocked(ctx, "delete_series_from")
}

// DeleteSeries removes a rule and thereby its whole series. An unknown id is
// a logged no-op.
func (s *CalendarService) DeleteSeries(ctx context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rules {
		if s.rules[i].ID == ruleID {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return s.persistLocked(ctx, "delete_series")
		}
	}

	serviceLogger(ctx, s.logger, "delete_series").WarnContext(ctx, "rule not found, nothing deleted", "id", ruleID)
	return nil
}

// DetachOccurrence permanently severs one occurrence from its series: the
// date joins the rule's exclusion set and an independent single event with
// the edited fields is materialized on it.
func (s *CalendarService) DetachOccurrence(ctx context.Context, date time.Time, ruleID string, input DetailsInput) (Occurrence, error) {
	vErr := &ValidationError{}
	details := s.validateDetails(input, vErr)
	if vErr.HasErrors() {
		return Occurrence{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rule := s.findRuleLocked(ruleID)
	if rule == nil {
		return Occurrence{}, fmt.Errorf("detach occurrence: %w", ErrNotFound)
	}

	excludeDate(rule, recurrence.DateKey(date))
	single := s.appendEventLocked(date, details)
	return singleOccurrence(date, single), s.persistLocked(ctx, "detach_occurrence")
}

// EditSeries updates a rule's shared details in place. The pattern, start
// date, exclusions, and end date are untouched.
func (s *CalendarService) EditSeries(ctx context.Context, ruleID string, input DetailsInput) (Occurrence, error) {
	vErr := &ValidationError{}
	details := s.validateDetails(input, vErr)
	if vErr.HasErrors() {
		return Occurrence{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rule := s.findRuleLocked(ruleID)
	if rule == nil {
		return Occurrence{}, fmt.Errorf("edit series: %w", ErrNotFound)
	}

	rule.Details = details
	return ruleOccurrence(rule.StartsOn, *rule), s.persistLocked(ctx, "edit_series")
}

// EditEvent updates a single event's details in place.
func (s *CalendarService) EditEvent(ctx context.Context, date time.Time, id string, input DetailsInput) (Occurrence, error) {
	vErr := &ValidationError{}
	details := s.validateDetails(input, vErr)
	if vErr.HasErrors() {
		return Occurrence{}, vErr
	}

	key := recurrence.DateKey(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.singles[key]
	for i := range bucket {
		if bucket[i].ID != id {
			continue
		}
		bucket[i].Details = details
		return singleOccurrence(date, bucket[i]), s.persistLocked(ctx, "edit_event")
	}

	return Occurrence{}, fmt.Errorf("edit event: %w", ErrNotFound)
}

// Search scans both collections for a case-insensitive substring match in
// title, description, or category. Single events resolve to their bucket
// date, rules to their start date annotated with the pattern kind. Results
// are ordered by resolved date; an empty keyword yields no results.
func (s *CalendarService) Search(keyword string) []Occurrence {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.singles))
	for key := range s.singles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []Occurrence
	for _, key := range keys {
		date, err := recurrence.ParseDateKey(key)
		if err != nil {
			continue
		}
		for _, single := range s.singles[key] {
			if matchesKeyword(single.Details, needle) {
				results = append(results, singleOccurrence(date, single))
			}
		}
	}
	for _, rule := range s.rules {
		if matchesKeyword(rule.Details, needle) {
			results = append(results, ruleOccurrence(rule.StartsOn, rule))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})
	return results
}

func matchesKeyword(details event.Details, needle string) bool {
	return strings.Contains(strings.ToLower(details.Title), needle) ||
		strings.Contains(strings.ToLower(details.Description), needle) ||
		strings.Contains(strings.ToLower(string(details.Category)), needle)
}

func (s *CalendarService) appendEventLocked(date time.Time, details event.Details) event.SingleEvent {
	single := event.SingleEvent{
		ID:        s.newID(),
		Details:   details,
		CreatedAt: s.now(),
	}
	key := recurrence.DateKey(date)
	s.singles[key] = append(s.singles[key], single)
	return single
}

func (s *CalendarService) findRuleLocked(id string) *event.Rule {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return &s.rules[i]
		}
	}
	return nil
}

func (s *CalendarService) persistLocked(ctx context.Context, operation string) error {
	if s.snapshots == nil {
		return nil
	}
	doc := persistence.FromState(s.singles, s.rules)
	if err := s.snapshots.Save(ctx, doc); err != nil {
		serviceLogger(ctx, s.logger, operation).ErrorContext(ctx, "failed to persist snapshot, change kept in memory", "error", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

func (s *CalendarService) validateDetails(input DetailsInput, vErr *ValidationError) event.Details {
	details := event.Details{
		Title:       strings.TrimSpace(input.Title),
		Category:    input.Category,
		Description: input.Description,
		Slot:        input.Slot,
	}

	if details.Title == "" {
		vErr.add("title", "title is required")
	}
	if details.Category == "" {
		details.Category = event.CategoryDaily
	}
	if details.Slot == "" {
		details.Slot = event.AllDay
	} else if !details.Slot.Valid() {
		vErr.add("time_slot", "unknown time slot")
	}

	return details
}

func validatePattern(pattern recurrence.Pattern, vErr *ValidationError) recurrence.Pattern {
	switch pattern.Kind {
	case recurrence.KindUnspecified:
		vErr.add("pattern", "pattern type is required")
	case recurrence.KindCustomInterval:
		if pattern.Unit == "" {
			pattern.Unit = recurrence.UnitDay
		}
		if pattern.Interval < 1 {
			vErr.add("interval", "interval must be a positive number of days")
		}
		if pattern.Unit != recurrence.UnitDay {
			// Week/month/year steps have no defined matcher semantics yet.
			vErr.add("unit", "only day intervals are supported")
		}
	case recurrence.KindCustomDates:
		if len(pattern.Dates) == 0 {
			vErr.add("dates", "at least one date is required")
		} else {
			dates := make(map[string]struct{}, len(pattern.Dates))
			for key := range pattern.Dates {
				dates[key] = struct{}{}
			}
			pattern.Dates = dates
		}
	}
	return pattern
}

func singleOccurrence(date time.Time, single event.SingleEvent) Occurrence {
	return Occurrence{
		SourceID:  single.ID,
		Date:      dateOnly(date),
		Details:   single.Details,
		CreatedAt: single.CreatedAt,
	}
}

func ruleOccurrence(date time.Time, rule event.Rule) Occurrence {
	return Occurrence{
		SourceID:    rule.ID,
		Date:        dateOnly(date),
		Details:     rule.Details,
		CreatedAt:   rule.CreatedAt,
		Recurring:   true,
		PatternKind: rule.Pattern.Kind,
	}
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func excludeDate(rule *event.Rule, key string) {
	if rule.Excluded == nil {
		rule.Excluded = make(map[string]struct{})
	}
	rule.Excluded[key] = struct{}{}
}
