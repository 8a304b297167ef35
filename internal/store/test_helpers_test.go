package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/aspectswrl/internal/ir"
)

const ex = "http://example.org/family#"

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, ex)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// triple builds p(s, o) from local names.
func triple(p, s, o string) ir.ObjectPropertyAssertion {
	return ir.ObjectPropertyAssertion{
		Property: ir.ObjectProperty{IRI: ex + p},
		Subject:  ir.NamedIndividual{IRI: ex + s},
		Object:   ir.NamedIndividual{IRI: ex + o},
	}
}

func negTriple(p, s, o string) ir.NegativeObjectPropertyAssertion {
	pos := triple(p, s, o)
	return ir.NegativeObjectPropertyAssertion{Property: pos.Property, Subject: pos.Subject, Object: pos.Object}
}
