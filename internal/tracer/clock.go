package tracer

import "time"

// Clock supplies the monotonic timestamp stored with each record. The
// platform normally provides a cycle counter or millisecond tick; tests
// inject a deterministic clock.
type Clock interface {
	Now() uint64
}

// monotonicClock counts milliseconds since the clock was created.
type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns the default millisecond clock.
func NewMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() uint64 {
	return uint64(time.Since(c.start) / time.Millisecond)
}
