// Package causal defines the immutable causal event record and the
// read-only DAG built over batches of those events.
//
// External store layers emit one CausalEvent per tracked mutation, each
// linked to the events that caused it. A Graph indexes a batch of events
// for analysis: filtered queries in timestamp or causal order, ancestor
// and descendant traversal, merge-base detection between diverged
// timelines, and aggregate statistics.
//
// Graphs are built fresh from a batch and never patched incrementally -
// rebuilding is the unit of consistency. Partial batches are expected:
// an event may cite parents that are absent from the batch, and the build
// silently skips those references.
package causal
