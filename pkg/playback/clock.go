package playback

import "time"

// Clock is the shared monotonic playback clock, in seconds. Injected so
// scheduling is testable without a real audio device.
type Clock interface {
	Now() float64
}

type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a Clock anchored at the moment of creation.
func NewMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() float64 {
	return time.Since(c.start).Seconds()
}
