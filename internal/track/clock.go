package track

import (
	"time"

	"rigtrack/internal/model"
)

// Clock abstracts time retrieval so derived projections ("which name is
// active now") are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// today converts the clock's current instant to a day-precision Date for
// comparison against stored interval boundaries.
func today(c Clock) model.Date {
	t := c.Now()
	d, _ := model.NewDate(t.Year(), int(t.Month()), t.Day())
	return d
}
