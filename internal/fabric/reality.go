package fabric

import (
	"time"

	"github.com/paracosm-io/paracosm/internal/prop"
)

// EntityState is the engine-local state of one entity: a named, mutable
// bundle of properties tracked within a reality. It is NOT a causal
// event; the external store layer derives events from mutations like
// these, the engine only tracks the current state.
type EntityState struct {
	ID        string      `json:"id"`
	Props     prop.Object `json:"props"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	RealityID string      `json:"reality_id"`
}

// Clone returns a deep copy sharing no mutable storage with the original.
func (e *EntityState) Clone() *EntityState {
	if e == nil {
		return nil
	}
	return &EntityState{
		ID:        e.ID,
		Props:     e.Props.Clone(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		RealityID: e.RealityID,
	}
}

// Reality is one consistent snapshot of entity states sharing a single
// causal history. An entity id exists in at most one reality at a time:
// relocation is a move, and fork is the sole mechanism producing two
// realities that share a starting snapshot before diverging.
type Reality struct {
	TimelineID string                  `json:"timeline_id"`
	Entities   map[string]*EntityState `json:"entities"`
	Timestamp  time.Time               `json:"timestamp"`
	// ParentTimeline is set when this reality originated from a fork or
	// relocation.
	ParentTimeline string `json:"parent_timeline,omitempty"`
}

// NewReality creates an empty reality for the given timeline.
func NewReality(timelineID string, ts time.Time) *Reality {
	return &Reality{
		TimelineID: timelineID,
		Entities:   make(map[string]*EntityState),
		Timestamp:  ts,
	}
}

// Clone returns a structural copy of the reality: same timeline identity,
// deep-copied entity map. Used at fork points to guarantee no shared
// mutable storage between branches.
func (r *Reality) Clone() *Reality {
	entities := make(map[string]*EntityState, len(r.Entities))
	for id, st := range r.Entities {
		entities[id] = st.Clone()
	}
	return &Reality{
		TimelineID:     r.TimelineID,
		Entities:       entities,
		Timestamp:      r.Timestamp,
		ParentTimeline: r.ParentTimeline,
	}
}

// Has reports whether an entity lives in this reality.
func (r *Reality) Has(entityID string) bool {
	_, ok := r.Entities[entityID]
	return ok
}

// Entity looks up an entity by id.
func (r *Reality) Entity(entityID string) (*EntityState, bool) {
	st, ok := r.Entities[entityID]
	return st, ok
}

// Paradox records a boundary violation that was resolved by forking.
// Exactly one paradox is recorded per fork resolution.
type Paradox struct {
	EntityID string `json:"entity_id"`
	// Boundary names the violated condition.
	Boundary string `json:"boundary"`
	// Snapshot is the RFC 8785 canonical serialization of the offending
	// property bag at the moment of violation.
	Snapshot []byte `json:"snapshot"`
	// SnapshotHash is the content-addressed hash of Snapshot, stable
	// across branches for the same offending state.
	SnapshotHash string    `json:"snapshot_hash"`
	Timestamp    time.Time `json:"timestamp"`
}
