package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aspectswrl/internal/compiler"
	"github.com/roach88/aspectswrl/internal/engine"
	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/memstore"
)

// familyContext loads the family fixture into a fresh store.
func familyContext(t *testing.T) *AssertionContext {
	t.Helper()
	ont, err := compiler.CompileFile(familyFixture)
	require.NoError(t, err)

	st := memstore.New(ont.IRI)
	require.NoError(t, ont.Load(context.Background(), st, st))
	return &AssertionContext{Ctx: context.Background(), Store: st, Base: ont.IRI}
}

func trace(names ...string) []TraceEvent {
	out := make([]TraceEvent, len(names))
	for i, n := range names {
		out[i] = TraceEvent{Seq: int64(i + 1), BuiltIn: n, Outcome: OutcomeTrue}
	}
	return out
}

func TestAssertFact(t *testing.T) {
	actx := familyContext(t)

	tests := []struct {
		name string
		a    Assertion
		pass bool
	}{
		{"present", Assertion{Property: "knows", Subject: "alice", Object: "bob"}, true},
		{"missing", Assertion{Property: "knows", Subject: "bob", Object: "alice"}, false},
		{"absent", Assertion{Property: "knows", Subject: "bob", Object: "alice", Absent: true}, true},
		{"absent but present", Assertion{Property: "knows", Subject: "alice", Object: "bob", Absent: true}, false},
		{"negative", Assertion{Property: "knows", Subject: "carol", Object: "alice", Negative: true}, true},
		{"positive of negative", Assertion{Property: "knows", Subject: "carol", Object: "alice"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFact(actx, tt.a)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, AssertFact, ae.Type)
		})
	}
}

func TestAssertInAspect(t *testing.T) {
	actx := familyContext(t)

	require.NoError(t, assertInAspect(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Aspect: "Work"}))

	err := assertInAspect(actx, Assertion{Property: "knows", Subject: "bob", Object: "carol", Aspect: "Work"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "ObjectPropertyAssertion(knows bob carol) in aspect Work", ae.Expected)
	assert.Equal(t, "aspects []", ae.Actual)

	err = assertInAspect(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Aspect: "Afternoon"})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "aspects [Trust Work]", ae.Actual)
}

func TestAssertAspectCount(t *testing.T) {
	actx := familyContext(t)

	assert.NoError(t, assertAspectCount(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Count: 2}))
	assert.NoError(t, assertAspectCount(actx, Assertion{Property: "knows", Subject: "bob", Object: "carol", Count: 0}))
	assert.Error(t, assertAspectCount(actx, Assertion{Property: "knows", Subject: "carol", Object: "alice", Negative: true, Count: 2}))
}

func TestAssertEquivalent(t *testing.T) {
	actx := familyContext(t)

	assert.NoError(t, assertEquivalent(actx, Assertion{
		Class:      "Afternoon",
		Expression: "ObjectUnionOf(ObjectHasValue(after noon) ObjectOneOf(noon))",
	}))

	err := assertEquivalent(actx, Assertion{Class: "Afternoon", Expression: "ObjectHasValue(after noon)"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "ObjectUnionOf(ObjectHasValue(after noon) ObjectOneOf(noon))", ae.Actual)

	err = assertEquivalent(actx, Assertion{Class: "Trust", Expression: "ObjectHasValue(after noon)"})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "no equivalence axiom", ae.Actual)
}

func TestAssertDeclared(t *testing.T) {
	actx := familyContext(t)

	assert.NoError(t, assertDeclared(actx, Assertion{Entity: "Trust", Kind: "class"}))
	assert.NoError(t, assertDeclared(actx, Assertion{Entity: "noon", Kind: "individual"}))
	assert.NoError(t, assertDeclared(actx, Assertion{Entity: "after", Kind: "property"}))

	err := assertDeclared(actx, Assertion{Entity: "noon", Kind: "class"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Declaration(Class(noon))", ae.Expected)
}

func TestAssertAxiomCount(t *testing.T) {
	actx := familyContext(t)

	assert.NoError(t, assertAxiomCount(actx, Assertion{Count: 13}))
	assert.Error(t, assertAxiomCount(actx, Assertion{Count: 12}))
}

func TestAssertionContext_ResolveVariables(t *testing.T) {
	actx := familyContext(t)

	frame := engine.NewBindings()
	frame.Bind("A", ir.Class{IRI: actx.Base + "Work"})
	frame.Bind("L", ir.BooleanLiteral(true))
	actx.Frames = []*engine.Bindings{frame}

	require.NoError(t, assertInAspect(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Aspect: "?A"}))

	err := assertInAspect(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Aspect: "?Z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variable ?Z is unbound")

	err = assertDeclared(actx, Assertion{Entity: "?L", Kind: "class"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a named entity")

	actx.Frames = append(actx.Frames, frame.Clone())
	err = assertInAspect(actx, Assertion{Property: "knows", Subject: "alice", Object: "bob", Aspect: "?A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs exactly one frame, got 2")
}

func TestAssertTraceCount(t *testing.T) {
	tr := trace("opa", "createOPA", "opa")

	assert.NoError(t, assertTraceCount(tr, Assertion{BuiltIn: "opa", Count: 2}))
	assert.NoError(t, assertTraceCount(tr, Assertion{BuiltIn: "temporal", Count: 0}))

	err := assertTraceCount(tr, Assertion{BuiltIn: "opa", Count: 3})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "opa invoked 2 times", ae.Actual)
}

func TestAssertTraceOrder(t *testing.T) {
	tr := trace("createOPA", "deontic", "opa", "createOPA")

	assert.NoError(t, assertTraceOrder(tr, Assertion{BuiltIns: []string{"createOPA", "opa"}}))

	err := assertTraceOrder(tr, Assertion{BuiltIns: []string{"opa", "createOPA"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "opa (pos 3) should be before createOPA (pos 1)", ae.Actual)

	err = assertTraceOrder(tr, Assertion{BuiltIns: []string{"createOPA", "temporal"}})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "missing built-in: temporal", ae.Actual)
}

func TestEvaluateAssertions(t *testing.T) {
	actx := familyContext(t)
	result := NewResult()
	result.Trace = trace("opa")

	msgs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, BuiltIn: "opa", Count: 1},
		{Type: AssertAxiomCount, Count: 13},
		{Type: AssertAxiomCount, Count: 1},
		{Type: "final_state"},
	}, actx)

	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "assertion[2]: Assertion failed: axiom_count")
	assert.Equal(t, `assertion[3]: unknown assertion type "final_state"`, msgs[1])
}

func TestEvaluateAssertions_OntologyWithoutContext(t *testing.T) {
	msgs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertAxiomCount}}, nil)
	assert.Equal(t, []string{"assertion[0]: axiom_count requires an ontology"}, msgs)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "opa invoked 2 times",
		Actual:   "opa invoked 1 times",
		Trace: []TraceEvent{
			{Seq: 1, BuiltIn: "opa", Args: []string{"?C", "prop:knows"}, Outcome: OutcomeFalse},
		},
	}

	assert.Equal(t,
		"Assertion failed: trace_count\n"+
			"  Expected: opa invoked 2 times\n"+
			"  Actual: opa invoked 1 times\n"+
			"\nFull trace:\n"+
			"  [1] opa(?C, prop:knows) -> false\n",
		err.Error())
}
