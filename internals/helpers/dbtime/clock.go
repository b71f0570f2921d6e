package dbtime

import "time"

// Clock returns "now"; services take one so tests can pin dates.
type Clock func() time.Time

// SchoolClock returns a clock in the named zone, falling back to UTC.
func SchoolClock(tz string) Clock {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

func (c Clock) Today() Date { return DateOf(c()) }
