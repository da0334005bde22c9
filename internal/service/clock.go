package service

import "time"

// Clock supplies the current instant. Business logic never reads the system
// clock directly so tests can pin time.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time {
	return time.Now()
}
