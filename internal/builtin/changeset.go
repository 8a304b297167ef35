package builtin

import (
	"context"

	"github.com/roach88/aspectswrl/internal/ir"
)

// Ontology is the axiom store the built-ins read and mutate.
type Ontology interface {
	// IRI is the ontology IRI; synthesized entities are named under it.
	IRI() string

	// FindObjectPropertyAssertion returns the first assertion p(s, o).
	// found is false when none exists.
	FindObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, s, o ir.NamedIndividual) (ax ir.ObjectPropertyAssertion, found bool, err error)

	// FindNegativeObjectPropertyAssertion is FindObjectPropertyAssertion for
	// negative assertions.
	FindNegativeObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, s, o ir.NamedIndividual) (ax ir.NegativeObjectPropertyAssertion, found bool, err error)

	// ApplyChanges applies a batch atomically. Adding an axiom that is
	// already present is a no-op.
	ApplyChanges(ctx context.Context, changes []ir.Change) error
}

// AspectManager records which axioms hold in which aspects.
type AspectManager interface {
	// AssertedAspects returns every aspect asserted for ax, named or anonymous.
	AssertedAspects(ctx context.Context, ax ir.Axiom) ([]ir.Aspect, error)

	// AddAspectAssertion registers that the pointcut's axiom holds in the aspect.
	AddAspectAssertion(ctx context.Context, a ir.AspectAssertion) error
}

// ChangeSet stages ontology changes for one invocation.
// Nothing reaches the Ontology until Commit.
type ChangeSet struct {
	changes []ir.Change
}

// Declare stages a declaration of e.
func (cs *ChangeSet) Declare(e ir.Entity) {
	cs.changes = append(cs.changes, ir.AddAxiom(ir.Declaration{Entity: e}))
}

// Assert stages the addition of ax.
func (cs *ChangeSet) Assert(ax ir.Axiom) {
	cs.changes = append(cs.changes, ir.AddAxiom(ax))
}

// Changes returns a copy of the staged changes in staging order.
func (cs *ChangeSet) Changes() []ir.Change {
	out := make([]ir.Change, len(cs.changes))
	copy(out, cs.changes)
	return out
}

// Len returns the number of staged changes.
func (cs *ChangeSet) Len() int {
	return len(cs.changes)
}

// Commit applies every staged change to ont as one batch.
// An empty change set commits nothing.
func (cs *ChangeSet) Commit(ctx context.Context, ont Ontology) error {
	if len(cs.changes) == 0 {
		return nil
	}
	return ont.ApplyChanges(ctx, cs.Changes())
}
