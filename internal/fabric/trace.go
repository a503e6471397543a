package fabric

import (
	"time"

	"github.com/paracosm-io/paracosm/internal/ops"
)

// Step is one trace entry: the operator that ran, the entity's state
// before and after (either may be nil), a timestamp, and a narrative.
// The trace is append-only for the lifetime of one engine instance.
type Step struct {
	Operator  ops.Operator
	Before    *EntityState
	After     *EntityState
	Timestamp time.Time
	Narrative string
}

// DiagCode categorizes non-fatal diagnostics emitted during a pass.
type DiagCode string

const (
	// DiagEntityAbsent: a transform/boundary/relocate targeted an entity
	// that does not exist in the current reality.
	DiagEntityAbsent DiagCode = "ENTITY_ABSENT"
	// DiagRepairMissing: a repair-action boundary fired without a
	// corrective mutator.
	DiagRepairMissing DiagCode = "REPAIR_MISSING"
)

// Diagnostic is a structured non-fatal finding. Diagnostics are returned
// on the report (not just logged) so tests can assert on them directly
// instead of capturing output streams.
type Diagnostic struct {
	Code     DiagCode `json:"code"`
	EntityID string   `json:"entity_id"`
	Message  string   `json:"message"`
}

// BranchPair holds the two realities produced by one fork resolution.
// Branch promotion is deliberately external policy: the engine returns
// both branches and never adopts either as its own current reality.
type BranchPair struct {
	// Repaired had the corrective mutator applied to the offending
	// entity (when one was supplied).
	Repaired *Reality
	// Exploration preserves the violation unchanged.
	Exploration *Reality
}

// Report summarizes one Execute pass.
type Report struct {
	// Steps is the number of trace entries appended by this pass.
	Steps int

	// Duration is the total wall-clock time of the pass, measured on the
	// engine's injected clock.
	Duration time.Duration

	// RepairTime and ForkTime are reserved and always zero: per-action
	// instrumentation is intentionally incomplete and must not be filled
	// in without a design decision on what it measures.
	RepairTime time.Duration
	ForkTime   time.Duration

	// Forks holds one BranchPair per fork resolution, in firing order.
	Forks []BranchPair

	// Relocations holds the realities built by relocation operators,
	// returned to the caller for adoption.
	Relocations []*Reality

	// Paradoxes holds exactly one record per fork resolution.
	Paradoxes []Paradox

	// Diagnostics lists the non-fatal findings of the pass.
	Diagnostics []Diagnostic
}

// SubscriberFunc receives the new state of a subscribed entity on seed
// and transform, and nil on termination, so subscribers can distinguish
// "changed" from "gone".
type SubscriberFunc func(*EntityState)

// TelemetryFunc receives the full cumulative trace after every dispatch.
// Each push carries the complete trace-so-far: a known O(n^2)
// total-payload trade-off across a long run, intentional in this design.
type TelemetryFunc func([]Step)
