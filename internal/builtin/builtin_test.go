package builtin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/engine"
	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/memstore"
)

const ex = "http://example.org/family#"

var (
	knows = ir.ObjectProperty{IRI: ex + "knows"}
	after = ir.ObjectProperty{IRI: ex + "after"}
	alice = ir.NamedIndividual{IRI: ex + "alice"}
	bob   = ir.NamedIndividual{IRI: ex + "bob"}
	carol = ir.NamedIndividual{IRI: ex + "carol"}
	trust = ir.Class{IRI: ex + "Trust"}
	work  = ir.Class{IRI: ex + "Work"}
)

type fixture struct {
	store *memstore.Store
	ids   *builtin.FixedGenerator
	lib   *builtin.Library
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	s := memstore.New(ex)
	gen := builtin.NewFixedGenerator(ids...)
	lib := builtin.New(s, s,
		builtin.WithIDGenerator(gen),
		builtin.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{store: s, ids: gen, lib: lib}
}

func (f *fixture) assert(t *testing.T, axioms ...ir.Axiom) {
	t.Helper()
	changes := make([]ir.Change, len(axioms))
	for i, ax := range axioms {
		changes[i] = ir.AddAxiom(ax)
	}
	require.NoError(t, f.store.ApplyChanges(context.Background(), changes))
}

func (f *fixture) inAspect(t *testing.T, ax ir.Axiom, c ir.Class) {
	t.Helper()
	require.NoError(t, f.store.AddAspectAssertion(context.Background(), ir.NewAspectAssertion(ax, ir.NamedAspect(c))))
}

func (f *fixture) invoke(t *testing.T, name string, b *engine.Bindings, args ...builtin.Argument) (bool, error) {
	t.Helper()
	call := builtin.Call{Rule: "r1", Args: args}
	if b != nil {
		call.Bindings = b
	}
	return f.lib.Invoke(context.Background(), name, call)
}

func opaAxiom(p ir.ObjectProperty, s, o ir.NamedIndividual) ir.ObjectPropertyAssertion {
	return ir.ObjectPropertyAssertion{Property: p, Subject: s, Object: o}
}

func negAxiom(p ir.ObjectProperty, s, o ir.NamedIndividual) ir.NegativeObjectPropertyAssertion {
	return ir.NegativeObjectPropertyAssertion{Property: p, Subject: s, Object: o}
}

func aspectClasses(t *testing.T, s *memstore.Store, ax ir.Axiom) []ir.Class {
	t.Helper()
	aspects, err := s.AssertedAspects(context.Background(), ax)
	require.NoError(t, err)
	var out []ir.Class
	for _, a := range aspects {
		if c, ok := a.AsClass(); ok {
			out = append(out, c)
		}
	}
	return out
}

func requireCode(t *testing.T, err error, code builtin.ErrorCode) *builtin.Error {
	t.Helper()
	require.Error(t, err)
	var be *builtin.Error
	require.True(t, errors.As(err, &be), "expected *builtin.Error, got %T: %v", err, err)
	require.Equal(t, code, be.Code, "error: %v", err)
	return be
}

// --- opa ---

func TestOpa_BoundAspect(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)
	f.inAspect(t, ax, trust)

	ok, err := f.invoke(t, builtin.NameOPA, nil, builtin.V(trust), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.invoke(t, builtin.NameOPA, nil, builtin.V(work), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.False(t, ok, "fact does not hold in Work")
}

func TestOpa_MissingFactIsFalse(t *testing.T) {
	f := newFixture(t)

	ok, err := f.invoke(t, builtin.NameOPA, nil, builtin.V(trust), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.False(t, ok)

	// The context is never examined when the fact is absent.
	ok, err = f.invoke(t, builtin.NameOPA, nil, builtin.V(alice), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpa_EnumeratesNamedAspectsOnly(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)
	f.inAspect(t, ax, trust)
	require.NoError(t, f.store.AddAspectAssertion(context.Background(),
		ir.NewAspectAssertion(ax, ir.Aspect{Expression: ir.ObjectHasValue{Property: after, Individual: carol}})))
	f.inAspect(t, ax, work)

	b := engine.NewBindings()
	ok, err := f.invoke(t, builtin.NameOPA, b, builtin.Var("?c"), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.True(t, ok)

	got, ok := b.Multi("c")
	require.True(t, ok)
	assert.Equal(t, []ir.Entity{trust, work}, got, "anonymous aspect is filtered out")

	branches := b.Branches()
	require.Len(t, branches, 2)
	c0, _ := branches[0].Lookup("c")
	c1, _ := branches[1].Lookup("c")
	assert.Equal(t, trust, c0)
	assert.Equal(t, work, c1)
}

func TestOpa_EmptyEnumerationSucceeds(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)

	b := engine.NewBindings()
	ok, err := f.invoke(t, builtin.NameOPA, b, builtin.Var("c"), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.True(t, ok, "the binding table's success signal is returned verbatim")

	got, present := b.Multi("c")
	require.True(t, present)
	assert.Empty(t, got)
	assert.Empty(t, b.Branches(), "no branch survives an empty enumeration")
}

func TestOpa_DereferencesBoundVariables(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)
	f.inAspect(t, ax, trust)

	b := engine.NewBindings()
	b.Bind("c", trust)
	b.Bind("r", knows)
	b.Bind("x", alice)
	b.Bind("y", bob)
	ok, err := f.invoke(t, builtin.NameOPA, b, builtin.Var("c"), builtin.Var("r"), builtin.Var("x"), builtin.Var("y"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpa_IsReadOnly(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)
	f.inAspect(t, ax, trust)
	before := len(f.store.Batches())

	_, err := f.invoke(t, builtin.NameOPA, engine.NewBindings(), builtin.Var("c"), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	_, err = f.invoke(t, builtin.NameOPA, nil, builtin.V(work), builtin.V(knows), builtin.V(bob), builtin.V(alice))
	require.NoError(t, err)

	assert.Len(t, f.store.Batches(), before)
	assert.Zero(t, f.ids.Used())
}

func TestOpa_UnboundRelationIsError(t *testing.T) {
	f := newFixture(t)

	_, err := f.invoke(t, builtin.NameOPA, engine.NewBindings(), builtin.V(trust), builtin.Var("r"), builtin.V(alice), builtin.V(bob))
	be := requireCode(t, err, builtin.ErrCodeUnboundVariable)
	assert.Equal(t, "r", be.Variable)
	assert.Equal(t, 2, be.Position)
}

// --- createOPA ---

func TestCreateOPA_FreshContext(t *testing.T) {
	f := newFixture(t, "ctx-1")
	b := engine.NewBindings()

	ok, err := f.invoke(t, builtin.NameCreateOPA, b, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	require.NoError(t, err)
	assert.True(t, ok)

	fresh := ir.Class{IRI: ex + "ctx-1"}
	got, bound := b.Lookup("c")
	require.True(t, bound)
	assert.Equal(t, fresh, got)

	ax := opaAxiom(knows, alice, bob)
	assert.True(t, f.store.Contains(ax))
	assert.True(t, f.store.Contains(ir.Declaration{Entity: fresh}))
	assert.Equal(t, []ir.Class{fresh}, aspectClasses(t, f.store, ax))

	batches := f.store.Batches()
	require.Len(t, batches, 1, "all changes commit as one batch")
	assert.Len(t, batches[0], 2)

	// Round trip: opa now succeeds in the synthesized context.
	ok, err = f.invoke(t, builtin.NameOPA, nil, builtin.V(fresh), builtin.V(knows), builtin.V(alice), builtin.V(bob))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateOPA_BoundContextNeverGeneratesIDs(t *testing.T) {
	f := newFixture(t)
	b := engine.NewBindings()
	b.Bind("c", trust)

	ok, err := f.invoke(t, builtin.NameCreateOPA, b, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.ids.Used())

	ax := opaAxiom(knows, alice, bob)
	assert.Equal(t, []ir.Class{trust}, aspectClasses(t, f.store, ax))
	assert.Equal(t, 1, f.store.Len(), "no declaration for a bound context")
}

func TestCreateOPA_ReusesExistingFact(t *testing.T) {
	f := newFixture(t, "ctx-1", "ctx-2")
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)

	b1 := engine.NewBindings()
	_, err := f.invoke(t, builtin.NameCreateOPA, b1, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	require.NoError(t, err)
	b2 := engine.NewBindings()
	_, err = f.invoke(t, builtin.NameCreateOPA, b2, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	require.NoError(t, err)

	c1, _ := b1.Lookup("c")
	c2, _ := b2.Lookup("c")
	assert.NotEqual(t, c1, c2, "each unbound invocation gets a distinct context")

	axioms, err := f.store.Axioms()
	require.NoError(t, err)
	n := 0
	for _, a := range axioms {
		if a.Type() == ir.AxiomObjectPropertyAssertion {
			n++
		}
	}
	assert.Equal(t, 1, n, "the base fact exists exactly once")
	assert.ElementsMatch(t, []ir.Class{c1.(ir.Class), c2.(ir.Class)}, aspectClasses(t, f.store, ax))
}

func TestCreateOPA_IdempotentWithBoundContext(t *testing.T) {
	f := newFixture(t)

	for range 3 {
		ok, err := f.invoke(t, builtin.NameCreateOPA, nil, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.V(trust))
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, []ir.Class{trust}, aspectClasses(t, f.store, opaAxiom(knows, alice, bob)))
}

func TestArityCheckedFirst(t *testing.T) {
	// Every row has the wrong count and wrong-kind arguments: arity wins.
	tests := []struct {
		name string
		args []builtin.Argument
		want string
	}{
		{builtin.NameOPA, []builtin.Argument{builtin.V(alice), builtin.V(trust), builtin.Var("c")}, "Expecting 4 argument(s), got 3."},
		{builtin.NameCreateOPA, []builtin.Argument{builtin.V(alice), builtin.V(alice), builtin.V(bob)}, "Expecting 4 argument(s), got 3."},
		{builtin.NameCreateNegativeOPA, []builtin.Argument{builtin.V(trust), builtin.V(knows), builtin.V(knows), builtin.Var("c"), builtin.Var("d")}, "Expecting 4 argument(s), got 5."},
		{builtin.NameTemporal, []builtin.Argument{builtin.V(alice), builtin.V(ir.Literal{Lexical: "maybe"})}, "Expecting 4 argument(s), got 2."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "ctx-1", "ctx-2")

			_, err := f.invoke(t, tt.name, engine.NewBindings(), tt.args...)
			be := requireCode(t, err, builtin.ErrCodeArityMismatch)
			assert.Contains(t, be.Error(), tt.want)
			assert.Contains(t, be.Error(), builtin.Namespace+tt.name)
			assert.Contains(t, be.Error(), "rule r1")
			assert.Zero(t, f.ids.Used())
			assert.Empty(t, f.store.Batches())
		})
	}
}

func TestCreateOPA_InvalidContextLeavesNoOrphans(t *testing.T) {
	f := newFixture(t, "ctx-1")
	b := engine.NewBindings()
	b.Bind("c", carol)

	_, err := f.invoke(t, builtin.NameCreateOPA, b, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	be := requireCode(t, err, builtin.ErrCodeTypeMismatch)
	assert.Equal(t, ir.KindClass, be.Expected)
	assert.Equal(t, ir.KindNamedIndividual, be.Actual)
	assert.Contains(t, be.Error(), "?c")

	assert.Zero(t, f.ids.Used(), "no identifier minted before validation")
	assert.Empty(t, f.store.Batches())
}

func TestCreateOPA_TypeMismatchDirectArgument(t *testing.T) {
	f := newFixture(t)

	_, err := f.invoke(t, builtin.NameCreateOPA, nil, builtin.V(alice), builtin.V(alice), builtin.V(bob), builtin.V(trust))
	be := requireCode(t, err, builtin.ErrCodeTypeMismatch)
	assert.Equal(t, 1, be.Position)
	assert.Contains(t, be.Error(), "position 1")
	assert.Contains(t, be.Error(), "OBJECT_PROPERTY")
}

// --- createNegativeOPA ---

func TestCreateNegativeOPA_CoexistsWithPositive(t *testing.T) {
	f := newFixture(t, "ctx-1")
	pos := opaAxiom(knows, alice, bob)
	f.assert(t, pos)
	f.inAspect(t, pos, trust)

	b := engine.NewBindings()
	ok, err := f.invoke(t, builtin.NameCreateNegativeOPA, b, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c"))
	require.NoError(t, err)
	assert.True(t, ok)

	neg := negAxiom(knows, alice, bob)
	fresh := ir.Class{IRI: ex + "ctx-1"}
	assert.True(t, f.store.Contains(pos))
	assert.True(t, f.store.Contains(neg))
	assert.Equal(t, []ir.Class{fresh}, aspectClasses(t, f.store, neg))
	assert.Equal(t, []ir.Class{trust}, aspectClasses(t, f.store, pos), "positive aspects untouched")
}

func TestCreateNegativeOPA_ReusesExistingNegative(t *testing.T) {
	f := newFixture(t)
	neg := negAxiom(knows, alice, bob)
	f.assert(t, neg)

	ok, err := f.invoke(t, builtin.NameCreateNegativeOPA, nil, builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.V(work))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, []ir.Class{work}, aspectClasses(t, f.store, neg))
}

// --- temporal ---

func TestTemporal_Exclusive(t *testing.T) {
	f := newFixture(t)

	ok, err := f.invoke(t, builtin.NameTemporal, nil,
		builtin.V(work), builtin.V(after), builtin.V(carol), builtin.V(ir.BooleanLiteral(false)))
	require.NoError(t, err)
	assert.True(t, ok)

	batches := f.store.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1, "bound C and T are not declared")

	eq, isEq := batches[0][0].Axiom.(ir.EquivalentClasses)
	require.True(t, isEq)
	assert.Equal(t, work, eq.Class)
	want := ir.ObjectHasValue{Property: after, Individual: carol}
	if diff := cmp.Diff(ir.ClassExpression(want), eq.Expression); diff != "" {
		t.Errorf("expression mismatch (-want +got):\n%s", diff)
	}
}

func TestTemporal_InclusiveSynthesizesBoth(t *testing.T) {
	f := newFixture(t, "aspect-1", "anchor-1")
	b := engine.NewBindings()
	b.Bind("b", ir.Literal{Lexical: "1", Datatype: ir.XSDBoolean})

	ok, err := f.invoke(t, builtin.NameTemporal, b, builtin.Var("c"), builtin.V(after), builtin.Var("t"), builtin.Var("b"))
	require.NoError(t, err)
	assert.True(t, ok)

	aspect := ir.Class{IRI: ex + "aspect-1"}
	anchor := ir.NamedIndividual{IRI: ex + "anchor-1"}
	c, _ := b.Lookup("c")
	tt, _ := b.Lookup("t")
	assert.Equal(t, aspect, c)
	assert.Equal(t, anchor, tt)

	want := ir.ObjectUnionOf{Operands: []ir.ClassExpression{
		ir.ObjectHasValue{Property: after, Individual: anchor},
		ir.ObjectOneOf{Individuals: []ir.NamedIndividual{anchor}},
	}}
	assert.True(t, f.store.Contains(ir.EquivalentClasses{Class: aspect, Expression: want}))
	assert.True(t, f.store.Contains(ir.Declaration{Entity: aspect}))
	assert.True(t, f.store.Contains(ir.Declaration{Entity: anchor}))
	assert.Equal(t, 3, f.store.Len())
}

func TestTemporalExpression(t *testing.T) {
	got := builtin.TemporalExpression(after, carol, true)
	want := ir.ObjectUnionOf{Operands: []ir.ClassExpression{
		ir.ObjectHasValue{Property: after, Individual: carol},
		ir.ObjectOneOf{Individuals: []ir.NamedIndividual{carol}},
	}}
	assert.True(t, ir.EqualExpressions(want, got))
	assert.True(t, got.IsAnonymous())
}

func TestTemporal_BooleanParseError(t *testing.T) {
	f := newFixture(t, "aspect-1", "anchor-1")

	_, err := f.invoke(t, builtin.NameTemporal, engine.NewBindings(),
		builtin.Var("c"), builtin.V(after), builtin.Var("t"), builtin.V(ir.Literal{Lexical: "yes", Datatype: ir.XSDBoolean}))
	be := requireCode(t, err, builtin.ErrCodeBooleanParse)
	assert.Equal(t, 4, be.Position)
	assert.Contains(t, be.Error(), `"yes"`)

	assert.Zero(t, f.ids.Used(), "validation precedes synthesis")
	assert.Empty(t, f.store.Batches())
}

func TestTemporal_RejectsNonBooleanDatatype(t *testing.T) {
	tests := []struct {
		name string
		lit  ir.Literal
	}{
		{"integer", ir.Literal{Lexical: "1", Datatype: ir.XSDNamespace + "integer"}},
		{"string", ir.Literal{Lexical: "true", Datatype: ir.XSDString}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "aspect-1", "anchor-1")

			_, err := f.invoke(t, builtin.NameTemporal, engine.NewBindings(),
				builtin.Var("c"), builtin.V(after), builtin.Var("t"), builtin.V(tt.lit))
			be := requireCode(t, err, builtin.ErrCodeBooleanParse)
			assert.Equal(t, 4, be.Position)
			assert.Zero(t, f.ids.Used())
			assert.Empty(t, f.store.Batches())
		})
	}
}

func TestTemporal_UntypedBooleanLiteral(t *testing.T) {
	f := newFixture(t, "aspect-1")

	ok, err := f.invoke(t, builtin.NameTemporal, engine.NewBindings(),
		builtin.Var("c"), builtin.V(after), builtin.V(carol), builtin.V(ir.Literal{Lexical: "0"}))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTemporal_BoundAnchorOfWrongKind(t *testing.T) {
	f := newFixture(t, "aspect-1")
	b := engine.NewBindings()
	b.Bind("t", trust)

	_, err := f.invoke(t, builtin.NameTemporal, b,
		builtin.Var("c"), builtin.V(after), builtin.Var("t"), builtin.V(ir.BooleanLiteral(true)))
	requireCode(t, err, builtin.ErrCodeTypeMismatch)
	assert.Zero(t, f.ids.Used(), "no orphan aspect class")
	assert.Empty(t, f.store.Batches())
}

// --- deontic / nest ---

func TestReservedBuiltInsNeverSucceed(t *testing.T) {
	for _, name := range []string{builtin.NameDeontic, builtin.NameNest} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			b := engine.NewBindings()

			for _, args := range [][]builtin.Argument{
				nil,
				{builtin.Var("x")},
				{builtin.V(alice), builtin.V(knows), builtin.V(trust), builtin.Var("y"), builtin.V(ir.BooleanLiteral(true))},
			} {
				ok, err := f.invoke(t, name, b, args...)
				require.NoError(t, err)
				assert.False(t, ok)
			}
			assert.Empty(t, f.store.Batches())
			assert.Zero(t, b.Len())
			assert.Zero(t, f.ids.Used())
		})
	}
}

// --- library ---

func TestLibrary_Names(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{"createNegativeOPA", "createOPA", "deontic", "nest", "opa", "temporal"}, f.lib.Names())
	assert.True(t, f.lib.Has("opa"))
	assert.True(t, f.lib.Has("aspectswrl:temporal"))
	assert.True(t, f.lib.Has(builtin.Namespace+"nest"))
	assert.False(t, f.lib.Has("spatial"))
	assert.NoError(t, f.lib.Reset())
}

func TestLibrary_DispatchesFullAndPrefixedNames(t *testing.T) {
	f := newFixture(t)
	ax := opaAxiom(knows, alice, bob)
	f.assert(t, ax)
	f.inAspect(t, ax, trust)

	args := []builtin.Argument{builtin.V(trust), builtin.V(knows), builtin.V(alice), builtin.V(bob)}
	for _, name := range []string{"opa", "aspectswrl:opa", builtin.Namespace + "opa"} {
		ok, err := f.lib.Invoke(context.Background(), name, builtin.Call{Rule: "r1", Args: args})
		require.NoError(t, err, name)
		assert.True(t, ok, name)
	}

	ok, err := f.lib.Opa(context.Background(), builtin.Call{Rule: "r1", Args: args})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLibrary_UnknownBuiltIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.lib.Invoke(context.Background(), "aspectswrl:spatial", builtin.Call{Rule: "r9"})
	be := requireCode(t, err, builtin.ErrCodeUnknownBuiltIn)
	assert.True(t, builtin.IsUnknownBuiltIn(err))
	assert.Contains(t, be.Error(), builtin.Namespace+"spatial")
	assert.Contains(t, be.Error(), "rule r9")
}

// failingOntology fails every call after finding nothing.
type failingOntology struct {
	*memstore.Store
	err error
}

func (o failingOntology) ApplyChanges(context.Context, []ir.Change) error {
	return o.err
}

func TestLibrary_CommitFailureBindsNothing(t *testing.T) {
	boom := errors.New("disk full")
	s := memstore.New(ex)
	lib := builtin.New(failingOntology{Store: s, err: boom}, s,
		builtin.WithIDGenerator(builtin.NewFixedGenerator("ctx-1")),
		builtin.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	b := engine.NewBindings()

	_, err := lib.CreateOPA(context.Background(), builtin.Call{
		Rule:     "r1",
		Args:     []builtin.Argument{builtin.V(knows), builtin.V(alice), builtin.V(bob), builtin.Var("c")},
		Bindings: b,
	})
	assert.ErrorIs(t, err, boom)
	_, bound := b.Lookup("c")
	assert.False(t, bound)

	aspects, err := s.AssertedAspects(context.Background(), opaAxiom(knows, alice, bob))
	require.NoError(t, err)
	assert.Empty(t, aspects, "no aspect registered after a failed commit")
}

func TestLibrary_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := memstore.New(ex)
	lib := builtin.New(s, s,
		builtin.WithIDGenerator(builtin.NewFixedGenerator("aspect-1", "anchor-1")),
		builtin.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		builtin.WithMetrics(builtin.NewMetrics(reg)),
	)
	ctx := context.Background()

	_, err := lib.Temporal(ctx, builtin.Call{Rule: "r1", Args: []builtin.Argument{
		builtin.Var("c"), builtin.V(after), builtin.Var("t"), builtin.V(ir.BooleanLiteral(false)),
	}})
	require.NoError(t, err)
	_, err = lib.Deontic(ctx, builtin.Call{Rule: "r1"})
	require.NoError(t, err)
	_, err = lib.Opa(ctx, builtin.Call{Rule: "r1"})
	require.Error(t, err)

	expected := `
# HELP aspectswrl_entities_synthesized_total Entities synthesized for unbound output variables, by entity kind
# TYPE aspectswrl_entities_synthesized_total counter
aspectswrl_entities_synthesized_total{kind="class"} 1
aspectswrl_entities_synthesized_total{kind="individual"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "aspectswrl_entities_synthesized_total"))

	n, err := testutil.GatherAndCount(reg, "aspectswrl_builtin_invocations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "temporal/true, deontic/false, opa/error")
}
