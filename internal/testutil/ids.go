// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator hands out a list of preset identifiers, then continues
// with "<prefix>-<n>" (n counting from 1) once the list is exhausted.
//
// Unlike builtin.FixedGenerator it never panics.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	preset []string
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix defaults to "id".
func NewSequenceGenerator(prefix string, preset ...string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{preset: preset, prefix: prefix}
}

// Generate implements builtin.IDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	if g.n <= len(g.preset) {
		return g.preset[g.n-1]
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n-len(g.preset))
}

// Count returns how many identifiers have been generated.
func (g *SequenceGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
