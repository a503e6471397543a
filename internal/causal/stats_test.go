package causal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Empty(t *testing.T) {
	g := Build(nil)

	s := g.Stats()
	assert.Equal(t, 0, s.TotalEvents)
	assert.Equal(t, 0, s.BranchPoints)
	assert.Equal(t, 0, s.MaxDepth)
	assert.Equal(t, 0.0, s.AvgDepth)
	assert.Empty(t, s.EventsPerTimeline)
}

func TestStats_Chain(t *testing.T) {
	g := Build(chain())

	s := g.Stats()
	assert.Equal(t, 3, s.TotalEvents)
	assert.Equal(t, map[string]int{"main": 3}, s.EventsPerTimeline)
	assert.Equal(t, 0, s.BranchPoints)
	assert.Equal(t, 3, s.MaxDepth)
	assert.InDelta(t, 2.0, s.AvgDepth, 1e-9) // depths 1, 2, 3
}

func TestStats_BranchPoints(t *testing.T) {
	// root fans out to two children; only root is a branch point.
	g := Build([]*Event{
		ev("root", "main", 0),
		ev("left", "main", 1, "root"),
		ev("right", "main", 1, "root"),
	})

	s := g.Stats()
	assert.Equal(t, 1, s.BranchPoints)
	assert.Equal(t, 2, s.MaxDepth)
}

func TestStats_MultipleTimelines(t *testing.T) {
	g := Build([]*Event{
		ev("a1", "alpha", 0),
		ev("a2", "alpha", 1, "a1"),
		ev("a3", "alpha", 2, "a2"),
		ev("b1", "beta", 0),
	})

	s := g.Stats()
	assert.Equal(t, map[string]int{"alpha": 3, "beta": 1}, s.EventsPerTimeline)
	assert.Equal(t, 3, s.MaxDepth)
	assert.InDelta(t, 1.75, s.AvgDepth, 1e-9) // depths 1, 2, 3, 1
}

func TestStats_DiamondUsesLongestPath(t *testing.T) {
	// root -> mid -> tip and root -> tip: tip's depth is 3 via mid.
	g := Build([]*Event{
		ev("root", "main", 0),
		ev("mid", "main", 1, "root"),
		ev("tip", "main", 2, "root", "mid"),
	})

	s := g.Stats()
	assert.Equal(t, 3, s.MaxDepth)
	assert.Equal(t, 1, s.BranchPoints) // root has two children
}

func TestStats_OrphanCountsAsChainStart(t *testing.T) {
	// An event whose parents fell outside the batch window starts its own
	// chain at depth 1.
	g := Build([]*Event{
		ev("e5", "main", 5, "outside-window"),
		ev("e6", "main", 6, "e5"),
	})

	s := g.Stats()
	assert.Equal(t, 2, s.MaxDepth)
}
