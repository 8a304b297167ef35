// Package store provides SQLite-backed durable storage for an ontology and
// its aspect assertions.
//
// A Store implements builtin.Ontology and builtin.AspectManager:
//   - Axioms: one row per distinct axiom, keyed by ir.AxiomID
//   - Aspect assertions: (axiom, aspect) memberships, keyed by ir.AspectID
//   - Meta: the ontology IRI the store was created for
//
// # Patterns
//
// Content-addressed idempotency:
//   - axioms.id is the axiom's content hash; inserts use ON CONFLICT DO NOTHING
//   - UNIQUE(axiom_id, aspect_id) makes re-asserting a membership a no-op
//
// Atomic batches:
//   - ApplyChanges runs every change of a batch in one transaction
//
// Deterministic reads:
//   - All listings ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
