package builtin

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces globally unique identifiers for synthesized entities.
// Implemented by UUIDGenerator and ULIDGenerator (production) and
// FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (version 4) UUIDs: 122 bits from crypto/rand.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a hyphenated UUID, e.g. "6ba7b810-9dad-41d1-80b4-00c04fd430c8".
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// ULIDGenerator generates ULIDs: a millisecond timestamp followed by 80 bits
// from crypto/rand. Identifiers sort by creation time, which keeps
// synthesized aspects in creation order in listings.
type ULIDGenerator struct{}

// Generate returns a 26-character Crockford base32 ULID.
func (ULIDGenerator) Generate() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// NewIDGenerator returns the generator for scheme ("uuid" or "ulid").
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", "uuid":
		return UUIDGenerator{}, nil
	case "ulid":
		return ULIDGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q: must be uuid or ulid", scheme)
}

// FixedGenerator returns predetermined identifiers for testing.
//
// This enables deterministic tests and golden trace comparison.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("ctx-1", "ctx-2")
//	gen.Generate() // "ctx-1"
//	gen.Generate() // "ctx-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, to catch tests that synthesize more
// entities than they expect.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Used returns how many ids have been handed out.
func (g *FixedGenerator) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}
