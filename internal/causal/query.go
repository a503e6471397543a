package causal

import (
	"sort"
	"time"
)

// Order selects the result ordering of a query.
type Order int

const (
	// OrderTimestamp sorts results by event timestamp (batch order as
	// tie-break, so results are stable).
	OrderTimestamp Order = iota
	// OrderCausal emits every event after the parents that are also part
	// of the filtered result set. Parents excluded by filters are skipped
	// without blocking their children.
	OrderCausal
)

// Filter selects and orders events from a graph. The zero value matches
// every event in timestamp order: an unset field never excludes anything.
type Filter struct {
	// Since/Until bound the inclusive time range. Zero values are unset.
	Since time.Time
	Until time.Time

	// Timelines, Actors, and Ops are membership filters; empty slices
	// match everything.
	Timelines []string
	Actors    []string
	Ops       []Op

	// Tags matches events carrying ANY of the given metadata tags.
	Tags []string

	Order   Order
	Reverse bool
	// Limit truncates results after ordering (and reversal); 0 is
	// unlimited.
	Limit int
}

// Query runs a filter pipeline over all indexed events and orders the
// survivors.
//
// The only error condition is a cycle observed during causal ordering,
// which returns a *CycleError - see that type for why the failure is
// loud.
func (g *Graph) Query(f Filter) ([]*Event, error) {
	// Filter pass, in batch order.
	selected := make([]int, 0, len(g.arena))
	inSet := make(map[int]bool, len(g.arena))
	for idx, ev := range g.arena {
		if !f.matches(ev) {
			continue
		}
		selected = append(selected, idx)
		inSet[idx] = true
	}

	var ordered []int
	switch f.Order {
	case OrderCausal:
		var err error
		ordered, err = g.causalOrder(selected, inSet)
		if err != nil {
			return nil, err
		}
	default:
		ordered = make([]int, len(selected))
		copy(ordered, selected)
		sort.SliceStable(ordered, func(i, j int) bool {
			return g.arena[ordered[i]].Timestamp.Before(g.arena[ordered[j]].Timestamp)
		})
	}

	if f.Reverse {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	if f.Limit > 0 && len(ordered) > f.Limit {
		ordered = ordered[:f.Limit]
	}

	out := make([]*Event, len(ordered))
	for i, idx := range ordered {
		out[i] = g.arena[idx]
	}
	return out, nil
}

func (f Filter) matches(ev *Event) bool {
	if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && ev.Timestamp.After(f.Until) {
		return false
	}
	if len(f.Timelines) > 0 && !containsString(f.Timelines, ev.TimelineID) {
		return false
	}
	if len(f.Actors) > 0 && !containsString(f.Actors, ev.ActorID) {
		return false
	}
	if len(f.Ops) > 0 && !containsOp(f.Ops, ev.Op) {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, tag := range f.Tags {
			if ev.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// causalOrder emits each selected event after its selected parents via a
// depth-first visit. Visit state is tri-color: an event found on the
// current DFS stack (gray) means the batch contains a cycle, which is
// upstream corruption and fails the query.
func (g *Graph) causalOrder(selected []int, inSet map[int]bool) ([]int, error) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the DFS stack
		black = 2 // emitted
	)
	color := make(map[int]int, len(selected))
	ordered := make([]int, 0, len(selected))

	var visit func(idx int) error
	visit = func(idx int) error {
		switch color[idx] {
		case black:
			return nil
		case gray:
			return &CycleError{EventID: g.arena[idx].ID}
		}
		color[idx] = gray
		for _, pidx := range g.parents[idx] {
			if !inSet[pidx] {
				// Parent excluded by filters: skipped, never blocks the child.
				continue
			}
			if err := visit(pidx); err != nil {
				return err
			}
		}
		color[idx] = black
		ordered = append(ordered, idx)
		return nil
	}

	for _, idx := range selected {
		if err := visit(idx); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsOp(list []Op, op Op) bool {
	for _, v := range list {
		if v == op {
			return true
		}
	}
	return false
}
