package matching

import "time"

// Clock supplies timestamps, monotonic non-decreasing within a process.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
