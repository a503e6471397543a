package fabric

import (
	"fmt"
	"time"

	"github.com/paracosm-io/paracosm/internal/ops"
	"github.com/paracosm-io/paracosm/internal/prop"
)

// Execute performs exactly one pass over the staged operator list, in
// insertion order. A skipped or no-op operator never aborts the
// remainder; once started the pass always runs every operator.
//
// The returned report carries forked branches and relocation realities
// for the caller to adopt (or not - that policy is external), exactly
// one Paradox per fork, and the structured diagnostics of the pass.
func (e *Engine) Execute() *Report {
	started := e.clock.Now()
	rpt := &Report{}

	for _, op := range e.operators {
		e.dispatch(op, rpt)
	}

	rpt.Duration = e.clock.Now().Sub(started)
	// RepairTime and ForkTime stay zero: reserved instrumentation.
	return rpt
}

// dispatch interprets one operator and then pushes the cumulative trace
// to telemetry listeners, one push per dispatch even when the operator
// was a no-op. The type switch is exhaustive over the sealed
// ops.Operator variants; an unknown variant is unrepresentable.
func (e *Engine) dispatch(op ops.Operator, rpt *Report) {
	switch o := op.(type) {
	case ops.Seed:
		e.execSeed(o, rpt)
		e.publish()
		// Attached boundary conditions run immediately after the seed.
		for _, b := range o.Boundaries {
			e.dispatch(b, rpt)
		}
		return
	case ops.Transform:
		e.execTransform(o, rpt)
	case ops.Boundary:
		e.execBoundary(o, rpt)
	case ops.Relocate:
		e.execRelocate(o, rpt)
	default:
		panic(fmt.Sprintf("fabric: unhandled operator type %T", op))
	}
	e.publish()
}

// record appends a trace step. Effectful dispatches append exactly one
// step; no-op dispatches append none.
func (e *Engine) record(op ops.Operator, before, after *EntityState, ts time.Time, narrative string, rpt *Report) {
	e.trace = append(e.trace, Step{
		Operator:  op,
		Before:    before.Clone(),
		After:     after.Clone(),
		Timestamp: ts,
		Narrative: narrative,
	})
	rpt.Steps++
}

// diagnose logs and collects a non-fatal diagnostic. A law never halts
// the pipeline.
func (e *Engine) diagnose(code DiagCode, entityID, message string, rpt *Report) {
	e.logger.Warn("law fabric diagnostic",
		"code", string(code),
		"entity", entityID,
		"message", message,
	)
	rpt.Diagnostics = append(rpt.Diagnostics, Diagnostic{
		Code:     code,
		EntityID: entityID,
		Message:  message,
	})
}

// execSeed unconditionally inserts a fresh entity state, overwriting any
// prior state for that id. Overwrite-wins is intentional: no existence
// check is performed. The trace step's before is always absent.
func (e *Engine) execSeed(op ops.Seed, rpt *Report) {
	now := e.clock.Now()
	st := &EntityState{
		ID:        op.EntityID,
		Props:     op.Props.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
		RealityID: e.reality.TimelineID,
	}
	e.reality.Entities[op.EntityID] = st

	e.record(op, nil, st, now, op.Narrative(), rpt)
	e.notify(op.EntityID, st.Clone())
}

// execTransform replaces the entity's properties when the gate is
// satisfied. Creation time is preserved, update time bumped. A nil gate
// is unconditional. An absent entity or unsatisfied gate is a no-op.
func (e *Engine) execTransform(op ops.Transform, rpt *Report) {
	now := e.clock.Now()
	st, ok := e.reality.Entity(op.EntityID)
	if !ok {
		e.diagnose(DiagEntityAbsent, op.EntityID, "transform targets an entity not present in this reality", rpt)
		return
	}

	if op.Gate != nil && !op.Gate(st.Props) {
		return
	}

	before := st.Clone()
	st.Props = op.Apply(st.Props).Clone()
	st.UpdatedAt = now

	e.record(op, before, st, now, op.Narrative(), rpt)
	e.notify(op.EntityID, st.Clone())
}

// execBoundary evaluates the boundary predicate and, when it holds,
// resolves the violation via terminate, in-place repair, or fork.
func (e *Engine) execBoundary(op ops.Boundary, rpt *Report) {
	now := e.clock.Now()
	st, ok := e.reality.Entity(op.EntityID)
	if !ok {
		e.diagnose(DiagEntityAbsent, op.EntityID, "boundary targets an entity not present in this reality", rpt)
		return
	}

	if op.When == nil || !op.When(st.Props) {
		return
	}

	switch op.Action {
	case ops.ActionTerminate:
		before := st.Clone()
		delete(e.reality.Entities, op.EntityID)
		e.record(op, before, nil, now, op.Narrative(), rpt)
		e.notify(op.EntityID, nil)

	case ops.ActionRepair:
		if op.Repair == nil {
			e.diagnose(DiagRepairMissing, op.EntityID, fmt.Sprintf("boundary %q resolves by repair but no corrective transform was supplied", op.Name), rpt)
			return
		}
		before := st.Clone()
		st.Props = op.Repair(st.Props).Clone()
		st.UpdatedAt = now
		e.record(op, before, st, now, op.Narrative(), rpt)

	case ops.ActionFork:
		e.execFork(op, st, now, rpt)

	default:
		panic(fmt.Sprintf("fabric: unhandled boundary action %v", op.Action))
	}
}

// execFork branches the timeline at the violation point. Both branches
// are structural copies of the current entity map, sharing no mutable
// storage afterward. Branch A applies the corrective mutator (when
// present) to the offending entity; branch B preserves the violation
// unchanged. Exactly one Paradox is recorded. The engine does NOT adopt
// either branch: promotion is an external policy decision.
func (e *Engine) execFork(op ops.Boundary, st *EntityState, now time.Time, rpt *Report) {
	snapshot, err := prop.MarshalCanonical(st.Props)
	if err != nil {
		// Property bags are constrained types, so this only fires on an
		// untyped nil smuggled into the bag.
		e.logger.Error("paradox snapshot serialization failed",
			"entity", op.EntityID,
			"boundary", op.Name,
			"error", err,
		)
		snapshot = []byte("{}")
	}
	hash, _ := prop.SnapshotHash(st.Props)

	repaired := e.branch(now)
	exploration := e.branch(now)

	if op.Repair != nil {
		if branchSt, ok := repaired.Entity(op.EntityID); ok {
			branchSt.Props = op.Repair(branchSt.Props).Clone()
			branchSt.UpdatedAt = now
		}
	}

	rpt.Forks = append(rpt.Forks, BranchPair{Repaired: repaired, Exploration: exploration})
	rpt.Paradoxes = append(rpt.Paradoxes, Paradox{
		EntityID:     op.EntityID,
		Boundary:     op.Name,
		Snapshot:     snapshot,
		SnapshotHash: hash,
		Timestamp:    now,
	})

	e.record(op, st, st, now, op.Narrative(), rpt)
}

// branch clones the home reality onto a fresh forked timeline.
func (e *Engine) branch(now time.Time) *Reality {
	r := e.reality.Clone()
	r.TimelineID = fmt.Sprintf("%s/fork-%s", e.reality.TimelineID, e.ids.NewID())
	r.ParentTimeline = e.reality.TimelineID
	r.Timestamp = now
	for _, st := range r.Entities {
		st.RealityID = r.TimelineID
	}
	return r
}

// execRelocate moves the entity into a brand-new reality scoped to the
// destination timeline when the guard holds: the entity is inserted
// there (optionally remapped) and atomically removed from the current
// reality, a move rather than a duplicate. The new reality is returned
// on the report for adoption.
func (e *Engine) execRelocate(op ops.Relocate, rpt *Report) {
	now := e.clock.Now()
	st, ok := e.reality.Entity(op.EntityID)
	if !ok {
		e.diagnose(DiagEntityAbsent, op.EntityID, "relocation targets an entity not present in this reality", rpt)
		return
	}

	if op.Guard == nil || !op.Guard(st.Props) {
		return
	}

	before := st.Clone()

	dest := NewReality(op.DestTimeline, now)
	dest.ParentTimeline = e.reality.TimelineID

	moved := st.Clone()
	if op.Remap != nil {
		moved.Props = op.Remap(moved.Props).Clone()
		moved.UpdatedAt = now
	}
	moved.RealityID = dest.TimelineID
	dest.Entities[moved.ID] = moved

	delete(e.reality.Entities, op.EntityID)

	rpt.Relocations = append(rpt.Relocations, dest)
	e.record(op, before, moved, now, op.Narrative(), rpt)
}
