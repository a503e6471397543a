package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_AdvancesPerReading(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start, time.Second)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())
}

func TestManualClock_PeekDoesNotAdvance(t *testing.T) {
	c := NewDefaultClock()

	before := c.Peek()
	assert.Equal(t, before, c.Peek())
	assert.Equal(t, before, c.Now())
}

func TestManualClock_Reset(t *testing.T) {
	c := NewDefaultClock()
	c.Now()
	c.Now()

	c.Reset(DefaultClockStart)
	assert.Equal(t, DefaultClockStart, c.Now())
}
