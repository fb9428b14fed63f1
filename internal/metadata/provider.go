// Package metadata resolves per-day calendar annotations (lunar labels,
// solar terms, public holidays). The engine treats the source as an injected
// pure function of the date; caching belongs to the provider, never to the
// event store.
package metadata

import "time"

// DayMetadata annotates one calendar day for display alongside its events.
type DayMetadata struct {
	// LunarLabel is the lunar-calendar day or month label for the date.
	LunarLabel string
	// SolarTerm is the solar-term name falling on the date, if any.
	SolarTerm string
	// Festival is a festival name falling on the date, if any.
	Festival string
	// RestDay marks statutory holidays and ordinary weekends.
	RestDay bool
	// MakeupWorkday marks weekend days converted to working days around a
	// holiday period.
	MakeupWorkday bool
	// HolidayName is the statutory holiday name, if any.
	HolidayName string
}

// Provider resolves metadata for a calendar date.
type Provider interface {
	Metadata(date time.Time) (DayMetadata, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(date time.Time) (DayMetadata, error)

// Metadata implements Provider.
func (f Func) Metadata(date time.Time) (DayMetadata, error) {
	return f(date)
}

// Weekends is a minimal built-in provider that marks Saturdays and Sundays
// as rest days. It stands in when no richer lunar/holiday source is wired.
func Weekends() Provider {
	return Func(func(date time.Time) (DayMetadata, error) {
		weekday := date.Weekday()
		return DayMetadata{
			RestDay: weekday == time.Saturday || weekday == time.Sunday,
		}, nil
	})
}
