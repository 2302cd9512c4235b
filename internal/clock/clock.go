// Package clock supplies the current wall time. It is the sole source
// of "now" used by the review service, so tests can substitute a fake
// and assert on exact scheduling math.
package clock

import "time"

// Clock is satisfied by RealClock.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time, normalized to UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
