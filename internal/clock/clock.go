package clock

import "time"

// Clock is the single source of "now" for the application. Load-time
// pruning, reminder cutoffs and time-remaining rendering all read it,
// so tests can pin the instant.
type Clock interface {
	Now() time.Time
}

// System reads the host clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Intended for tests.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
