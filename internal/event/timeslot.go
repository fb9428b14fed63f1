package event

// TimeSlot labels when an occurrence happens within its day: either the
// all-day sentinel or one of twelve fixed two-hour ranges.
type TimeSlot string

// AllDay is the sentinel slot for events without a time range.
const AllDay TimeSlot = "all-day"

var timedSlots = []TimeSlot{
	"00:00-02:00", "02:00-04:00", "04:00-06:00", "06:00-08:00",
	"08:00-10:00", "10:00-12:00", "12:00-14:00", "14:00-16:00",
	"16:00-18:00", "18:00-20:00", "20:00-22:00", "22:00-24:00",
}

// Slots returns the full slot vocabulary in display order, all-day first.
func Slots() []TimeSlot {
	out := make([]TimeSlot, 0, len(timedSlots)+1)
	out = append(out, AllDay)
	out = append(out, timedSlots...)
	return out
}

// Valid reports whether s is one of the known slot labels.
func (s TimeSlot) Valid() bool {
	if s == AllDay {
		return true
	}
	for _, slot := range timedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// SortKey maps the slot to a fixed-format HH:MM start time. All-day maps to
// the minimal value so it sorts first; slot labels are fixed-width, so
// lexicographic order on the key equals chronological order.
func (s TimeSlot) SortKey() string {
	if s == AllDay || len(s) < 5 {
		return "00:00"
	}
	return string(s[:5])
}

// Range splits a timed slot into its start and end labels. All-day and
// malformed slots report ok=false.
func (s TimeSlot) Range() (start, end string, ok bool) {
	if s == AllDay || len(s) != 11 || s[5] != '-' {
		return "", "", false
	}
	return string(s[:5]), string(s[6:]), true
}
