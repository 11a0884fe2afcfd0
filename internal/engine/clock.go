package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Every "is this today" and "how old" answer in the engine is derived from a single Clock read.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// nowIn reads the clock once and expresses the instant in loc, so that calendar-day
// comparisons against dates in loc see the same wall clock.
func nowIn(c Clock, loc *time.Location) time.Time {
	if c == nil {
		c = RealClock{}
	}
	now := c.Now()
	if loc == nil {
		return now
	}
	return now.In(loc)
}
