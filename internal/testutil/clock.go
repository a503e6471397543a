package testutil

import (
	"sync"
	"time"
)

// ManualClock is a deterministic clock for tests. Every reading advances
// the clock by a fixed step, so successive timestamps are strictly
// increasing and fully reproducible.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewManualClock creates a clock that returns start on its first reading
// and advances by step per reading.
func NewManualClock(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{now: start, step: step}
}

// DefaultClockStart is the epoch used by scenarios that do not pin their
// own start time. Fixed so golden traces are stable.
var DefaultClockStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDefaultClock creates a ManualClock at DefaultClockStart with a one
// second step.
func NewDefaultClock() *ManualClock {
	return NewManualClock(DefaultClockStart, time.Second)
}

// Now returns the current reading and advances the clock by one step.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the next reading without advancing the clock.
func (c *ManualClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to the given start. Used for test reuse.
func (c *ManualClock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = start
}
