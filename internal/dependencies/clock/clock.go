package clock

import "time"

// Clock provides time operations that can be mocked for testing. Heartbeat
// windows and snapshot cadence are pure functions of Now, which keeps the
// disconnect-countdown tests free of real sleeps.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}
