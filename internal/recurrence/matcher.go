package recurrence

import "time"

// DateKeyLayout is the canonical zero-padded YYYY-MM-DD form identifying a
// calendar day. Date keys are the sole join key between the single-event map,
// exclusion sets, and explicit date patterns.
const DateKeyLayout = "2006-01-02"

// DateKey formats t as a canonical date key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a canonical date key into a naive calendar date.
func ParseDateKey(key string) (time.Time, error) {
	return time.Parse(DateKeyLayout, key)
}

// Kind identifies the recurrence semantics attached to a pattern.
type Kind int

const (
	// KindUnspecified indicates the pattern kind is not set; it never matches.
	KindUnspecified Kind = iota
	// KindDaily fires on every day from the rule's start date.
	KindDaily
	// KindWeekly fires every seventh day from the rule's start date.
	KindWeekly
	// KindMonthly fires on the start date's day number, clamped to the last
	// day of shorter months.
	KindMonthly
	// KindQuarterly fires every third month on the start date's day number,
	// clamped like KindMonthly.
	KindQuarterly
	// KindYearly fires on the start date's month and day, with a Feb 28
	// fallback for rules started on Feb 29.
	KindYearly
	// KindCustomInterval fires every Interval units from the start date.
	KindCustomInterval
	// KindCustomDates fires only on an explicit set of date keys.
	KindCustomDates
)

var kindNames = map[Kind]string{
	KindDaily:          "daily",
	KindWeekly:         "weekly",
	KindMonthly:        "monthly",
	KindQuarterly:      "quarterly",
	KindYearly:         "yearly",
	KindCustomInterval: "custom_interval",
	KindCustomDates:    "custom_dates",
}

// String returns the stable serialized name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unspecified"
}

// KindFromName resolves a serialized kind name. Unknown names map to
// KindUnspecified so stored documents with unrecognized patterns still load.
func KindFromName(name string) Kind {
	for kind, known := range kindNames {
		if known == name {
			return kind
		}
	}
	return KindUnspecified
}

// Unit is the step unit of a custom-interval pattern.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Pattern describes when a rule produces occurrences.
//
// Interval and Unit apply only to KindCustomInterval; Dates applies only to
// KindCustomDates. Custom intervals with a unit other than UnitDay are
// accepted by the data model but never match — the intended semantics for
// week/month/year steps are an unresolved product question, so the matcher
// refuses to guess.
type Pattern struct {
	Kind     Kind
	Interval int
	Unit     Unit
	Dates    map[string]struct{}
}

// Rule carries the scheduling half of a recurrence record: everything the
// matcher needs to decide whether an occurrence falls on a given date.
type Rule struct {
	StartsOn time.Time
	EndsOn   *time.Time
	Excluded map[string]struct{}
	Pattern  Pattern
}

// Matches reports whether rule produces an occurrence on date.
//
// The checks run in a fixed order: start-date bound, exclusion set, end-date
// bound, then pattern dispatch. Both dates are treated as naive calendar
// days; time-of-day and location are ignored.
func Matches(date time.Time, rule Rule) bool {
	target := midnight(date)
	start := midnight(rule.StartsOn)

	if target.Before(start) {
		return false
	}
	if _, excluded := rule.Excluded[DateKey(target)]; excluded {
		return false
	}
	if rule.EndsOn != nil && target.After(midnight(*rule.EndsOn)) {
		return false
	}

	switch rule.Pattern.Kind {
	case KindDaily:
		return true
	case KindWeekly:
		return daysBetween(start, target)%7 == 0
	case KindMonthly:
		return dayMatchesWithClamp(start, target)
	case KindQuarterly:
		months := monthsBetween(start, target)
		if months < 0 || months%3 != 0 {
			return false
		}
		return dayMatchesWithClamp(start, target)
	case KindYearly:
		if target.Month() == start.Month() && target.Day() == start.Day() {
			return true
		}
		if start.Month() == time.February && start.Day() == 29 && !isLeapYear(target.Year()) {
			return target.Month() == time.February && target.Day() == 28
		}
		return false
	case KindCustomInterval:
		if rule.Pattern.Unit != UnitDay || rule.Pattern.Interval < 1 {
			return false
		}
		return daysBetween(start, target)%rule.Pattern.Interval == 0
	case KindCustomDates:
		_, ok := rule.Pattern.Dates[DateKey(target)]
		return ok
	default:
		return false
	}
}

// dayMatchesWithClamp implements the shared monthly/quarterly day check:
// exact day-number match, or the last day of a month too short to contain
// the start day (a rule started on the 31st fires on Feb 28/29).
func dayMatchesWithClamp(start, target time.Time) bool {
	if target.Day() == start.Day() {
		return true
	}
	last := daysInMonth(target.Year(), target.Month())
	return start.Day() > last && target.Day() == last
}

// midnight truncates t to its calendar date in a fixed location so that
// day arithmetic is unaffected by the caller's zone or time of day.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
