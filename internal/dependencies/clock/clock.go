// Package clock abstracts wall time so services can be tested against a
// controllable clock.
package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System reads the host clock
type System struct{}

// New returns the system clock
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now()
}

func (System) Since(t time.Time) time.Duration {
	return time.Since(t)
}
