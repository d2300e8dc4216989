package compositor

import "time"

// Clock is the monotonic compositor clock. Times are durations since an
// arbitrary epoch fixed for the session.
type Clock interface {
	Now() time.Duration
}

// monotonicClock measures from its creation using the runtime's monotonic
// clock reading.
type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a Clock starting at zero now.
func NewMonotonicClock() Clock {
	return monotonicClock{start: time.Now()}
}

func (c monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
