package engine

import "time"

// Clock abstracts time.Now() so "today" can be fixed in tests.
// Calendar and the upcoming birthdays view read the date through it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
