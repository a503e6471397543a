package causal

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genBatch produces a random well-formed batch: event i may only cite
// parents among events 0..i-1, so cycles are unrepresentable, mirroring
// how real producers may only cite earlier events.
func genBatch() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 2)).Map(func(parentCounts []int) []*Event {
		batch := make([]*Event, len(parentCounts))
		for i, count := range parentCounts {
			var causedBy []string
			for p := 1; p <= count && i-p >= 0; p++ {
				causedBy = append(causedBy, fmt.Sprintf("e%d", i-p))
			}
			batch[i] = &Event{
				ID:         fmt.Sprintf("e%d", i),
				Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Second),
				Key:        fmt.Sprintf("entity:%d", i%3),
				Op:         OpUpdate,
				CausedBy:   causedBy,
				TimelineID: "main",
			}
		}
		return batch
	})
}

func TestGraphProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("indexing is bijective over unique ids", prop.ForAll(
		func(batch []*Event) bool {
			g := Build(batch)
			if g.Len() != len(batch) {
				return false
			}
			for _, ev := range batch {
				if _, ok := g.Event(ev.ID); !ok {
					return false
				}
			}
			return true
		},
		genBatch(),
	))

	properties.Property("forward and backward adjacency are exact inverses", prop.ForAll(
		func(batch []*Event) bool {
			g := Build(batch)
			for _, ev := range batch {
				for _, parent := range g.Ancestors(ev.ID, 1) {
					found := false
					for _, child := range g.Descendants(parent.ID, 1) {
						if child.ID == ev.ID {
							found = true
							break
						}
					}
					if !found {
						return false
					}
				}
				for _, child := range g.Descendants(ev.ID, 1) {
					found := false
					for _, parent := range g.Ancestors(child.ID, 1) {
						if parent.ID == ev.ID {
							found = true
							break
						}
					}
					if !found {
						return false
					}
				}
			}
			return true
		},
		genBatch(),
	))

	properties.Property("causal order places parents before children", prop.ForAll(
		func(batch []*Event) bool {
			g := Build(batch)
			ordered, err := g.Query(Filter{Order: OrderCausal})
			if err != nil {
				return false
			}
			pos := make(map[string]int, len(ordered))
			for i, ev := range ordered {
				pos[ev.ID] = i
			}
			for _, ev := range ordered {
				for _, parentID := range ev.CausedBy {
					pp, ok := pos[parentID]
					if !ok {
						continue // parent outside batch window
					}
					if pp >= pos[ev.ID] {
						return false
					}
				}
			}
			return true
		},
		genBatch(),
	))

	properties.Property("no event is its own ancestor or descendant", prop.ForAll(
		func(batch []*Event) bool {
			g := Build(batch)
			for _, ev := range batch {
				for _, anc := range g.Ancestors(ev.ID, 0) {
					if anc.ID == ev.ID {
						return false
					}
				}
				for _, desc := range g.Descendants(ev.ID, 0) {
					if desc.ID == ev.ID {
						return false
					}
				}
			}
			return true
		},
		genBatch(),
	))

	properties.TestingRun(t)
}
