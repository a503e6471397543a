package causal

import (
	"time"

	"github.com/paracosm-io/paracosm/internal/prop"
)

// Op identifies the kind of mutation an event records.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpReset  Op = "reset"
)

// ValidOps defines the recognized operation kinds.
var ValidOps = map[Op]bool{
	OpCreate: true,
	OpUpdate: true,
	OpDelete: true,
	OpReset:  true,
}

// Meta carries optional free-form metadata attached by the originating
// store layer.
type Meta struct {
	Origin string   `json:"origin,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Event is an immutable record of one mutation, linked to the events that
// caused it.
//
// An event with an empty CausedBy set is a root of its timeline. A
// non-empty CausedBy set must reference events created at or before this
// event's timestamp; that invariant is the producer's responsibility and
// is NOT validated at construction time - malformed references are
// tolerated until graph build, where absent parents are skipped.
//
// Events are created once by the external store layer and never mutated
// afterward.
type Event struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Key        string     `json:"key"`
	Op         Op         `json:"op"`
	Value      prop.Value `json:"value,omitempty"`
	PrevValue  prop.Value `json:"prev_value,omitempty"`
	CausedBy   []string   `json:"caused_by,omitempty"`
	TimelineID string     `json:"timeline_id"`
	ActorID    string     `json:"actor_id,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
}

// Root reports whether the event starts a causal chain (no cited parents).
func (e *Event) Root() bool {
	return len(e.CausedBy) == 0
}

// HasTag reports whether the event carries the given metadata tag.
func (e *Event) HasTag(tag string) bool {
	if e.Meta == nil {
		return false
	}
	for _, t := range e.Meta.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EventParams describes a new event; id and timestamp are allocated by
// the Factory.
type EventParams struct {
	Key        string
	Op         Op
	Value      prop.Value
	PrevValue  prop.Value
	CausedBy   []string
	TimelineID string
	ActorID    string
	Meta       *Meta
}

// Factory stamps new events with ids and timestamps. The clock and id
// generator are injected so tests can produce deterministic batches.
type Factory struct {
	clock Clock
	ids   IDGenerator
}

// NewFactory creates an event factory. A nil clock defaults to
// SystemClock; a nil generator defaults to UUIDv7Generator.
func NewFactory(clock Clock, ids IDGenerator) *Factory {
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Factory{clock: clock, ids: ids}
}

// NewEvent allocates a unique id and a timestamp and returns the event.
//
// No validation is performed here: unknown ops, empty keys, and dangling
// CausedBy references all pass through. Graph build is where dangling
// references are resolved (by skipping them).
func (f *Factory) NewEvent(p EventParams) *Event {
	return &Event{
		ID:         f.ids.NewID(),
		Timestamp:  f.clock.Now(),
		Key:        p.Key,
		Op:         p.Op,
		Value:      p.Value,
		PrevValue:  p.PrevValue,
		CausedBy:   append([]string(nil), p.CausedBy...),
		TimelineID: p.TimelineID,
		ActorID:    p.ActorID,
		Meta:       p.Meta,
	}
}
