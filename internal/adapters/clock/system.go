// Package clock provides the wall-clock adapter for ports.Clock.
package clock

import "time"

// System is the real clock.
type System struct{}

// New returns the system clock.
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now()
}

func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
