// Package ops defines the four ontogenetic operators that drive entity
// lifecycle: seed, transform, boundary, and relocate.
//
// Operators are pure data. They describe WHAT should happen to an entity,
// independent of execution; the fabric engine is the only place they are
// interpreted. The Operator interface is sealed so dispatch is an
// exhaustive type switch - an unhandled variant is a compile-time
// impossibility, not a silent skip.
package ops

import (
	"fmt"

	"github.com/paracosm-io/paracosm/internal/prop"
)

// Predicate evaluates a condition over an entity's current properties.
// Predicates must be pure: no mutation of the bag they are given.
type Predicate func(prop.Object) bool

// Mutator derives new properties from current properties. Mutators must
// be pure: return a fresh bag rather than mutating the input.
type Mutator func(prop.Object) prop.Object

// Operator is the sealed interface over the four lifecycle primitives.
// Only Seed, Transform, Boundary, and Relocate implement it.
type Operator interface {
	// Entity returns the id of the entity the operator targets.
	Entity() string
	// Narrative returns a human-readable description of the operator,
	// auto-derived when none was supplied.
	Narrative() string

	operator() // Sealed - only the four variants implement it
}

// Seed brings a brand-new entity into existence with an initial property
// bag. Seeding an id that already exists overwrites the prior state -
// overwrite-wins, no existence check.
type Seed struct {
	EntityID string
	Props    prop.Object
	// Boundaries are boundary conditions to attach alongside the seed.
	// They are scheduled immediately after the seed, in order.
	Boundaries []Boundary
	// Note overrides the auto-derived narrative when non-empty.
	Note string
}

func (s Seed) Entity() string { return s.EntityID }

func (s Seed) Narrative() string {
	if s.Note != "" {
		return s.Note
	}
	return fmt.Sprintf("seed entity %s", s.EntityID)
}

func (Seed) operator() {}

// Transform replaces an entity's properties with the result of Apply,
// gated by an optional predicate over the current properties. A nil Gate
// means unconditional.
type Transform struct {
	EntityID string
	Apply    Mutator
	Gate     Predicate
	Note     string
}

func (t Transform) Entity() string { return t.EntityID }

func (t Transform) Narrative() string {
	if t.Note != "" {
		return t.Note
	}
	return fmt.Sprintf("transform entity %s", t.EntityID)
}

func (Transform) operator() {}

// Action selects how a violated boundary resolves.
type Action int

const (
	// ActionTerminate removes the entity from its reality.
	ActionTerminate Action = iota + 1
	// ActionRepair applies the corrective mutator in place.
	ActionRepair
	// ActionFork branches the timeline into a repaired branch and an
	// exploration branch that preserves the violation.
	ActionFork
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case ActionTerminate:
		return "terminate"
	case ActionRepair:
		return "repair"
	case ActionFork:
		return "fork"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Boundary is a law: a named condition over an entity's properties plus
// the action taken when the condition holds.
type Boundary struct {
	EntityID string
	// Name identifies the violated condition in paradox records.
	Name string
	// When is the violation predicate; a nil predicate never fires.
	When   Predicate
	Action Action
	// Repair is the corrective mutator for ActionRepair and the repaired
	// branch of ActionFork. Optional; a repair action without it is a
	// diagnostic no-op, a fork without it leaves both branches unrepaired.
	Repair Mutator
	Note   string
}

func (b Boundary) Entity() string { return b.EntityID }

func (b Boundary) Narrative() string {
	if b.Note != "" {
		return b.Note
	}
	return fmt.Sprintf("boundary %q on entity %s (%s)", b.Name, b.EntityID, b.Action)
}

func (Boundary) operator() {}

// Relocate moves an entity into a different timeline: a move, never a
// duplicate. The optional Remap mutator is applied at the moment of
// crossing.
type Relocate struct {
	EntityID string
	// DestTimeline is the timeline id of the reality built for the move.
	DestTimeline string
	// Guard must hold for the relocation to happen; a nil guard never
	// fires.
	Guard Predicate
	Remap Mutator
	Note  string
}

func (r Relocate) Entity() string { return r.EntityID }

func (r Relocate) Narrative() string {
	if r.Note != "" {
		return r.Note
	}
	return fmt.Sprintf("relocate entity %s to %s", r.EntityID, r.DestTimeline)
}

func (Relocate) operator() {}
