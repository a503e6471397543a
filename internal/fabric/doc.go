// Package fabric implements the law fabric engine: the single interpreter
// of ontogenetic operators.
//
// An Engine holds one current Reality (its home timeline) and an ordered
// operator list. Execute performs exactly one pass over that list, in
// insertion order - the order IS the schedule, with no reordering and no
// retry. Each dispatch appends a Step to the engine's append-only trace
// and pushes the cumulative trace to telemetry listeners.
//
// Failure policy is fail-soft: a law never halts the pipeline. Missing
// entities and missing repair mutators surface as structured Diagnostics
// in the execution report, and the pass continues.
//
// Execution is single-threaded and fully synchronous. The engine performs
// no locking; single-writer discipline is a caller contract. Forking is
// the sole isolation mechanism: a fork performs a structural copy of the
// entity map, so the resulting realities may be mutated independently,
// including on separate goroutines, without further synchronization.
// Telemetry and subscription callbacks run reentrantly inside Execute;
// a callback that mutates engine state is undefined behavior by
// convention and must not be relied upon.
package fabric
