package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable ids ("ev-1", "ev-2", ...) for tests.
// This enables deterministic test execution and golden trace comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator with the given prefix.
func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Count returns how many ids have been handed out.
func (g *SequenceIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
