package causal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paracosm-io/paracosm/internal/prop"
)

// manualClock is a test clock that advances a fixed step per reading.
type manualClock struct {
	now  time.Time
	step time.Duration
}

func newManualClock(start time.Time, step time.Duration) *manualClock {
	return &manualClock{now: start, step: step}
}

func (c *manualClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// seqIDs is a test id generator producing e-1, e-2, ...
type seqIDs struct {
	prefix string
	n      int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

func TestFactory_NewEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFactory(newManualClock(start, time.Second), &seqIDs{prefix: "e"})

	ev := f.NewEvent(EventParams{
		Key:        "account:alice",
		Op:         OpCreate,
		Value:      prop.Object{"balance": prop.Int(100)},
		TimelineID: "main",
		ActorID:    "user-1",
		Meta:       &Meta{Origin: "store", Tags: []string{"audit"}},
	})

	assert.Equal(t, "e-1", ev.ID)
	assert.Equal(t, start, ev.Timestamp)
	assert.Equal(t, OpCreate, ev.Op)
	assert.True(t, ev.Root())
	assert.True(t, ev.HasTag("audit"))
	assert.False(t, ev.HasTag("billing"))

	second := f.NewEvent(EventParams{
		Key:        "account:alice",
		Op:         OpUpdate,
		Value:      prop.Object{"balance": prop.Int(90)},
		PrevValue:  prop.Object{"balance": prop.Int(100)},
		CausedBy:   []string{ev.ID},
		TimelineID: "main",
	})

	assert.Equal(t, "e-2", second.ID)
	assert.Equal(t, start.Add(time.Second), second.Timestamp)
	assert.False(t, second.Root())
	assert.Equal(t, []string{"e-1"}, second.CausedBy)
}

func TestFactory_NewEvent_CopiesCausedBy(t *testing.T) {
	f := NewFactory(newManualClock(time.Unix(0, 0), time.Second), &seqIDs{prefix: "e"})

	parents := []string{"p1"}
	ev := f.NewEvent(EventParams{Key: "k", Op: OpUpdate, CausedBy: parents, TimelineID: "main"})

	parents[0] = "mutated"
	assert.Equal(t, []string{"p1"}, ev.CausedBy)
}

func TestFactory_Defaults(t *testing.T) {
	f := NewFactory(nil, nil)

	ev := f.NewEvent(EventParams{Key: "k", Op: OpCreate, TimelineID: "main"})
	require.Len(t, ev.ID, 36) // hyphenated UUID
	assert.False(t, ev.Timestamp.IsZero())
}

func TestFactory_NoValidation(t *testing.T) {
	f := NewFactory(newManualClock(time.Unix(0, 0), time.Second), &seqIDs{prefix: "e"})

	// Dangling parents and unknown ops pass through untouched.
	ev := f.NewEvent(EventParams{
		Key:        "k",
		Op:         Op("exotic"),
		CausedBy:   []string{"no-such-event"},
		TimelineID: "main",
	})

	assert.Equal(t, Op("exotic"), ev.Op)
	assert.Equal(t, []string{"no-such-event"}, ev.CausedBy)
}
