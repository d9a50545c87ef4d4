package service

import "time"

// Clock supplies the current instant in the hotel's location. "Today" for every
// precondition is the calendar date of Now.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
