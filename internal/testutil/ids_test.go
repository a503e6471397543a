package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs(t *testing.T) {
	g := NewSequenceIDs("ev")

	assert.Equal(t, "ev-1", g.NewID())
	assert.Equal(t, "ev-2", g.NewID())
	assert.Equal(t, "ev-3", g.NewID())
	assert.Equal(t, 3, g.Count())
}
