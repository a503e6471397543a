package fabric

import (
	"log/slog"

	"github.com/paracosm-io/paracosm/internal/causal"
	"github.com/paracosm-io/paracosm/internal/ops"
)

// Engine executes ontogenetic operators against one home reality.
//
// Lifecycle: Add/AddMany/Clear stage the operator list, Execute runs one
// pass over it, Subscribe and OnTelemetry register callbacks, and the
// getter methods expose the current reality, entities, and trace.
//
// INVARIANTS:
//   - The operator list order never changes after staging; it IS the
//     schedule.
//   - The trace is append-only for the lifetime of the instance.
//   - Execute never adopts a forked branch; the home reality only
//     changes through seed/transform/terminate/repair/relocate effects.
type Engine struct {
	reality   *Reality
	operators []ops.Operator
	trace     []Step

	subscribers map[string][]SubscriberFunc
	telemetry   []TelemetryFunc

	clock  causal.Clock
	ids    causal.IDGenerator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the clock used for trace timestamps, entity
// creation/update times, and pass duration. Tests inject a deterministic
// clock.
func WithClock(c causal.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDs injects the id generator used for fork branch timeline ids.
func WithIDs(ids causal.IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithLogger injects the structured logger for fail-soft diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine with an empty reality on the given home timeline.
func New(timelineID string, opts ...Option) *Engine {
	e := &Engine{
		subscribers: make(map[string][]SubscriberFunc),
		clock:       causal.SystemClock{},
		ids:         causal.UUIDv7Generator{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reality = NewReality(timelineID, e.clock.Now())
	return e
}

// Add appends one operator to the schedule.
func (e *Engine) Add(op ops.Operator) {
	e.operators = append(e.operators, op)
}

// AddMany appends operators in order.
func (e *Engine) AddMany(operators []ops.Operator) {
	e.operators = append(e.operators, operators...)
}

// Clear drops all staged operators. The trace and reality are untouched.
func (e *Engine) Clear() {
	e.operators = nil
}

// Operators returns the staged schedule. Used for introspection.
func (e *Engine) Operators() []ops.Operator {
	out := make([]ops.Operator, len(e.operators))
	copy(out, e.operators)
	return out
}

// Subscribe registers a callback for one entity id. The callback is
// invoked with the new state on seed and transform, and with nil on
// termination. Callbacks run synchronously inside Execute.
func (e *Engine) Subscribe(entityID string, fn SubscriberFunc) {
	e.subscribers[entityID] = append(e.subscribers[entityID], fn)
}

// OnTelemetry registers a listener that receives the full cumulative
// trace after every dispatch.
func (e *Engine) OnTelemetry(fn TelemetryFunc) {
	e.telemetry = append(e.telemetry, fn)
}

// Reality returns the engine's current home reality.
func (e *Engine) Reality() *Reality {
	return e.reality
}

// Entity looks up an entity in the home reality.
func (e *Engine) Entity(entityID string) (*EntityState, bool) {
	return e.reality.Entity(entityID)
}

// Entities returns a snapshot of the home reality's entity map. The
// returned map is a fresh copy; the states are shared.
func (e *Engine) Entities() map[string]*EntityState {
	out := make(map[string]*EntityState, len(e.reality.Entities))
	for id, st := range e.reality.Entities {
		out[id] = st
	}
	return out
}

// Trace returns a copy of the append-only trace so far.
func (e *Engine) Trace() []Step {
	out := make([]Step, len(e.trace))
	copy(out, e.trace)
	return out
}

// notify invokes the subscribers of one entity id.
func (e *Engine) notify(entityID string, st *EntityState) {
	for _, fn := range e.subscribers[entityID] {
		fn(st)
	}
}

// publish pushes the cumulative trace to every telemetry listener.
// Called once per dispatch; each push carries the complete trace-so-far.
func (e *Engine) publish() {
	if len(e.telemetry) == 0 {
		return
	}
	snapshot := e.Trace()
	for _, fn := range e.telemetry {
		fn(snapshot)
	}
}
