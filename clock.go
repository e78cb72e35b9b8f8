package gifloop

import "time"

// Clock is a free running millisecond counter. It is expected to wrap around.
type Clock interface {
	Millis() uint32
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock counting milliseconds from now using the
// monotonic clock.
func NewSystemClock() Clock {
	return &systemClock{
		start: time.Now(),
	}
}

func (c *systemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// elapsed returns the milliseconds from start to now, allowing for the
// counter wrapping in between.
func elapsed(start, now uint32) uint32 {
	return now - start
}
