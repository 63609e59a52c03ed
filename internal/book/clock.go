package book

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Birthday validation and the birthday countdown both ask it for "today".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// dateOf truncates t to its calendar date, expressed in UTC so that day
// arithmetic never crosses a daylight-saving transition.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return RealClock{}
	}
	return c
}
