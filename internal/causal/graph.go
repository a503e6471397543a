package causal

// Graph is a read-only DAG over one batch of events.
//
// Adjacency is dense: events live in an arena slice in batch order, and
// parent/child edges are int indexes into that arena. Only edges whose
// both endpoints are present in the batch are materialized, so forward
// and backward adjacency are exact inverses by construction. Raw
// CausedBy references (including dangling ones) remain available on the
// events themselves.
type Graph struct {
	arena    []*Event
	index    map[string]int // event id -> arena index
	parents  [][]int        // backward adjacency, mirrors CausedBy
	children [][]int        // forward adjacency
	roots    map[string][]int // timeline id -> root arena indexes
}

// Build constructs a graph from a batch of events in two passes.
//
// Pass 1 indexes every event by id and registers events with an empty
// CausedBy set as roots of their timeline. Pass 2 walks every event's
// CausedBy list and inserts the event into each named parent's child
// set, skipping silently when the referenced parent is absent from the
// batch - partial/windowed loads are expected and must not fail the
// build.
//
// Duplicate ids keep the first occurrence; later duplicates are not
// indexed and gain no edges.
func Build(events []*Event) *Graph {
	g := &Graph{
		arena:    make([]*Event, 0, len(events)),
		index:    make(map[string]int, len(events)),
		roots:    make(map[string][]int),
	}

	// Pass 1: index and register roots.
	for _, ev := range events {
		if _, dup := g.index[ev.ID]; dup {
			continue
		}
		idx := len(g.arena)
		g.arena = append(g.arena, ev)
		g.index[ev.ID] = idx
		if ev.Root() {
			g.roots[ev.TimelineID] = append(g.roots[ev.TimelineID], idx)
		}
	}

	g.parents = make([][]int, len(g.arena))
	g.children = make([][]int, len(g.arena))

	// Pass 2: materialize edges, skipping absent parents.
	for idx, ev := range g.arena {
		for _, parentID := range ev.CausedBy {
			pidx, ok := g.index[parentID]
			if !ok {
				continue
			}
			g.parents[idx] = append(g.parents[idx], pidx)
			g.children[pidx] = append(g.children[pidx], idx)
		}
	}

	return g
}

// Len returns the number of indexed events.
func (g *Graph) Len() int {
	return len(g.arena)
}

// Event looks up an event by id.
func (g *Graph) Event(id string) (*Event, bool) {
	idx, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.arena[idx], true
}

// Events returns the indexed events in batch order.
func (g *Graph) Events() []*Event {
	out := make([]*Event, len(g.arena))
	copy(out, g.arena)
	return out
}

// Roots returns the root event ids of a timeline, in batch order.
func (g *Graph) Roots(timelineID string) []string {
	idxs := g.roots[timelineID]
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = g.arena[idx].ID
	}
	return out
}

// Ancestors returns the transitive parents of the given event, discovered
// depth-first over backward adjacency starting from the event's parents.
// The event itself is never part of its own ancestor set.
//
// maxDepth bounds the traversal: 1 returns direct parents only. A
// maxDepth <= 0 means unbounded. Unknown ids yield an empty result.
func (g *Graph) Ancestors(id string, maxDepth int) []*Event {
	return g.traverse(id, maxDepth, g.parents)
}

// Descendants returns the transitive children of the given event,
// discovered depth-first over forward adjacency starting from the event's
// children. The event itself is never part of its own descendant set.
//
// maxDepth bounds the traversal: 1 returns direct children only. A
// maxDepth <= 0 means unbounded. Unknown ids yield an empty result.
func (g *Graph) Descendants(id string, maxDepth int) []*Event {
	return g.traverse(id, maxDepth, g.children)
}

// traverse runs a depth-bounded DFS over the given adjacency, starting at
// the neighbors of id. A visited set deduplicates diamonds.
func (g *Graph) traverse(id string, maxDepth int, adj [][]int) []*Event {
	start, ok := g.index[id]
	if !ok {
		return nil
	}

	var out []*Event
	visited := make(map[int]bool)

	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		if maxDepth > 0 && depth > maxDepth {
			return
		}
		for _, next := range adj[idx] {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, g.arena[next])
			walk(next, depth+1)
		}
	}
	walk(start, 1)

	return out
}

// MergeBase computes the nearest common ancestor of two events, in the
// version-control sense: the full ancestor set of a is taken, then b's
// ancestors are scanned in discovery order and the first one also present
// in a's set is returned.
//
// Returns ok=false when the two events share no ancestor (causally
// disjoint timelines) or when either id is unknown. Disjointness is not
// an error.
func (g *Graph) MergeBase(a, b string) (*Event, bool) {
	if _, ok := g.index[a]; !ok {
		return nil, false
	}
	if _, ok := g.index[b]; !ok {
		return nil, false
	}

	ancestorsOfA := make(map[int]bool)
	for _, ev := range g.Ancestors(a, 0) {
		ancestorsOfA[g.index[ev.ID]] = true
	}

	for _, ev := range g.Ancestors(b, 0) {
		if ancestorsOfA[g.index[ev.ID]] {
			return ev, true
		}
	}

	return nil, false
}
