package causal

import "time"

// Clock supplies timestamps for causal events and execution traces.
//
// Implementations must be monotonic-leaning: successive calls should not
// observe time moving backwards. Production code uses SystemClock; tests
// inject a deterministic clock rather than depending on real time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process wall clock.
//
// Go's time.Now carries a monotonic clock reading alongside the wall
// clock, so durations computed between two SystemClock readings are
// immune to wall-clock adjustment. On platforms without a monotonic
// source the runtime falls back to coarse wall time; timestamp precision
// therefore differs across environments, which is why tests must inject
// their own clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
