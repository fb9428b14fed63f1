package event

import (
	"time"

	"github.com/example/personal-calendar/internal/recurrence"
)

// Details carries the occurrence-bearing fields shared by single events and
// recurrence rules.
type Details struct {
	Title       string
	Category    Category
	Description string
	Slot        TimeSlot
}

// SingleEvent is a one-off event stored under a specific date key.
type SingleEvent struct {
	ID string
	Details
	CreatedAt time.Time
}

// Clone returns an independent copy of the event.
func (e SingleEvent) Clone() SingleEvent {
	return e
}

// Rule is a recurrence record: the shared details plus the scheduling state
// evaluated by the matcher.
type Rule struct {
	ID string
	Details
	StartsOn  time.Time
	EndsOn    *time.Time
	Excluded  map[string]struct{}
	Pattern   recurrence.Pattern
	CreatedAt time.Time
}

// Clone returns a deep copy of the rule so callers cannot reach the store's
// exclusion set or custom date set.
func (r Rule) Clone() Rule {
	out := r
	if r.EndsOn != nil {
		end := *r.EndsOn
		out.EndsOn = &end
	}
	out.Excluded = cloneSet(r.Excluded)
	out.Pattern.Dates = cloneSet(r.Pattern.Dates)
	return out
}

// Matcher projects the rule onto the recurrence engine's view of it.
func (r Rule) Matcher() recurrence.Rule {
	return recurrence.Rule{
		StartsOn: r.StartsOn,
		EndsOn:   r.EndsOn,
		Excluded: r.Excluded,
		Pattern:  r.Pattern,
	}
}

func cloneSet(set map[string]struct{}) map[string]struct{} {
	if set == nil {
		return nil
	}
	out := make(map[string]struct{}, len(set))
	for key := range set {
		out[key] = struct{}{}
	}
	return out
}
