package persistence

import "errors"

var (
	// ErrUnavailable is returned when the backing sink cannot be reached at all.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
