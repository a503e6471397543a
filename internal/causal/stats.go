package causal

// Stats aggregates structural measurements over a graph.
type Stats struct {
	// TotalEvents is the number of indexed events.
	TotalEvents int `json:"total_events"`

	// EventsPerTimeline counts indexed events grouped by timeline id.
	EventsPerTimeline map[string]int `json:"events_per_timeline"`

	// BranchPoints counts events with more than one forward child.
	BranchPoints int `json:"branch_points"`

	// MaxDepth is the longest causal chain, measured in events. A root
	// has depth 1; an event without in-batch parents also counts as
	// depth 1 (it starts a chain as far as this batch can see).
	MaxDepth int `json:"max_depth"`

	// AvgDepth is the mean of every event's maximum causal depth.
	AvgDepth float64 `json:"avg_depth"`
}

// Stats computes aggregate statistics via a max-depth walk from each
// timeline's roots.
func (g *Graph) Stats() Stats {
	s := Stats{
		TotalEvents:       len(g.arena),
		EventsPerTimeline: make(map[string]int),
	}

	for _, ev := range g.arena {
		s.EventsPerTimeline[ev.TimelineID]++
	}

	for idx := range g.arena {
		if len(g.children[idx]) > 1 {
			s.BranchPoints++
		}
	}

	if len(g.arena) == 0 {
		return s
	}

	// Max causal depth per event: 1 + max over in-batch parents, memoized.
	depth := make([]int, len(g.arena))
	var depthOf func(idx int) int
	depthOf = func(idx int) int {
		if depth[idx] != 0 {
			return depth[idx]
		}
		depth[idx] = 1 // provisional, also breaks corrupt cycles
		best := 1
		for _, pidx := range g.parents[idx] {
			if d := depthOf(pidx) + 1; d > best {
				best = d
			}
		}
		depth[idx] = best
		return best
	}

	total := 0
	for idx := range g.arena {
		d := depthOf(idx)
		total += d
		if d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	s.AvgDepth = float64(total) / float64(len(g.arena))

	return s
}
