package causal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taggedEvent(id, timeline, actor string, op Op, sec int, tags []string, causedBy ...string) *Event {
	e := ev(id, timeline, sec, causedBy...)
	e.Op = op
	e.ActorID = actor
	if len(tags) > 0 {
		e.Meta = &Meta{Tags: tags}
	}
	return e
}

func queryFixture() *Graph {
	return Build([]*Event{
		taggedEvent("e1", "main", "alice", OpCreate, 0, []string{"audit"}),
		taggedEvent("e2", "main", "bob", OpUpdate, 1, nil, "e1"),
		taggedEvent("e3", "main", "alice", OpUpdate, 2, []string{"billing"}, "e2"),
		taggedEvent("e4", "side", "carol", OpDelete, 3, []string{"audit", "billing"}),
	})
}

func TestQuery_EmptyFilterMatchesEverything(t *testing.T) {
	g := queryFixture()

	got, err := g.Query(Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, eventIDs(got))
}

func TestQuery_TimeRangeInclusive(t *testing.T) {
	g := queryFixture()

	got, err := g.Query(Filter{
		Since: time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
		Until: time.Date(2026, 1, 1, 0, 0, 2, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e3"}, eventIDs(got))
}

func TestQuery_MembershipFilters(t *testing.T) {
	g := queryFixture()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"timeline", Filter{Timelines: []string{"side"}}, []string{"e4"}},
		{"actor", Filter{Actors: []string{"alice"}}, []string{"e1", "e3"}},
		{"op", Filter{Ops: []Op{OpUpdate}}, []string{"e2", "e3"}},
		{"tags match any", Filter{Tags: []string{"billing"}}, []string{"e3", "e4"}},
		{"multiple tags", Filter{Tags: []string{"audit", "billing"}}, []string{"e1", "e3", "e4"}},
		{"combined", Filter{Timelines: []string{"main"}, Actors: []string{"alice"}}, []string{"e1", "e3"}},
		{"no match", Filter{Actors: []string{"nobody"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Query(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eventIDs(got))
		})
	}
}

func TestQuery_CausalOrderParentFirst(t *testing.T) {
	g := Build(chain())

	got, err := g.Query(Filter{Order: OrderCausal})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, eventIDs(got))
}

func TestQuery_CausalOrderFullBatchParentBeforeChild(t *testing.T) {
	g := Build([]*Event{
		ev("e4", "main", 2, "e2", "e3"),
		ev("e3", "main", 1, "e1"),
		ev("e2", "main", 1, "e1"),
		ev("e1", "main", 0),
	})

	got, err := g.Query(Filter{Order: OrderCausal})
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, e := range got {
		pos[e.ID] = i
	}
	for _, e := range got {
		for _, parent := range e.CausedBy {
			assert.Less(t, pos[parent], pos[e.ID], "parent %s must precede child %s", parent, e.ID)
		}
	}
}

func TestQuery_CausalOrderSkipsFilteredParents(t *testing.T) {
	g := queryFixture()

	// e1 is excluded by the op filter; its child e2 must still be emitted.
	got, err := g.Query(Filter{Ops: []Op{OpUpdate}, Order: OrderCausal})
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e3"}, eventIDs(got))
}

func TestQuery_CausalOrderDetectsCycle(t *testing.T) {
	// A cycle is structurally impossible in well-formed input; hand-craft
	// one to simulate upstream corruption.
	g := Build([]*Event{
		ev("x", "main", 0, "y"),
		ev("y", "main", 1, "x"),
	})

	_, err := g.Query(Filter{Order: OrderCausal})
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.EventID)
}

func TestQuery_ReverseAndLimit(t *testing.T) {
	g := queryFixture()

	got, err := g.Query(Filter{Reverse: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3"}, eventIDs(got))
}

func TestQuery_LimitAppliesAfterOrdering(t *testing.T) {
	g := Build(chain())

	got, err := g.Query(Filter{Order: OrderCausal, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, eventIDs(got))
}

func TestQuery_TimestampOrderStableOnTies(t *testing.T) {
	g := Build([]*Event{
		ev("a", "main", 1),
		ev("b", "main", 1),
		ev("c", "main", 0),
	})

	got, err := g.Query(Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, eventIDs(got))
}
