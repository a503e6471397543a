package causal

import "fmt"

// CycleError reports a cycle observed during causal ordering.
//
// Events may only cite earlier events as parents, so a cycle is
// structurally impossible in well-formed input; observing one signals
// upstream corruption. Queries fail loudly with this error rather than
// silently truncating the result.
type CycleError struct {
	// EventID is the event at which the cycle was detected.
	EventID string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("causal cycle detected at event %s: parents may only cite earlier events", e.EventID)
}
