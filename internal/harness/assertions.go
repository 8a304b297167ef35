package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/aspectswrl/internal/engine"
	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/memstore"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s(%s) -> %s\n", event.Seq, event.BuiltIn, strings.Join(event.Args, ", "), event.Outcome)
		}
	}

	return buf.String()
}

// AssertionContext provides the final ontology for ontology assertions.
type AssertionContext struct {
	Ctx   context.Context
	Store *memstore.Store

	// Base resolves local names.
	Base string

	// Frames are the surviving binding frames; "?X" names resolve against
	// them when there is exactly one.
	Frames []*engine.Bindings
}

// resolve expands a name to an IRI. "?X" is looked up in the single
// surviving frame.
func (a *AssertionContext) resolve(name string) (string, error) {
	v, ok := strings.CutPrefix(name, "?")
	if !ok {
		return ir.ExpandIRI(a.Base, name), nil
	}
	if len(a.Frames) != 1 {
		return "", fmt.Errorf("variable %s needs exactly one frame, got %d", name, len(a.Frames))
	}
	e, bound := a.Frames[0].Lookup(v)
	if !bound {
		return "", fmt.Errorf("variable %s is unbound", name)
	}
	switch x := e.(type) {
	case ir.ObjectProperty:
		return x.IRI, nil
	case ir.NamedIndividual:
		return x.IRI, nil
	case ir.Class:
		return x.IRI, nil
	default:
		return "", fmt.Errorf("variable %s is bound to %s, not a named entity", name, e.Kind())
	}
}

// triple resolves the assertion's property, subject and object into the
// positive or negative axiom it names.
func (a *AssertionContext) triple(as Assertion) (ir.Axiom, error) {
	p, err := a.resolve(as.Property)
	if err != nil {
		return nil, err
	}
	s, err := a.resolve(as.Subject)
	if err != nil {
		return nil, err
	}
	o, err := a.resolve(as.Object)
	if err != nil {
		return nil, err
	}
	prop := ir.ObjectProperty{IRI: p}
	subj := ir.NamedIndividual{IRI: s}
	obj := ir.NamedIndividual{IRI: o}
	if as.Negative {
		return ir.NegativeObjectPropertyAssertion{Property: prop, Subject: subj, Object: obj}, nil
	}
	return ir.ObjectPropertyAssertion{Property: prop, Subject: subj, Object: obj}, nil
}

func assertFact(actx *AssertionContext, as Assertion) error {
	ax, err := actx.triple(as)
	if err != nil {
		return err
	}
	present := actx.Store.Contains(ax)
	if present == !as.Absent {
		return nil
	}

	want, got := "present", "absent"
	if as.Absent {
		want, got = got, want
	}
	return &AssertionError{
		Type:     AssertFact,
		Expected: fmt.Sprintf("%s %s", ir.FunctionalSyntax(ax, actx.Base), want),
		Actual:   got,
	}
}

func assertInAspect(actx *AssertionContext, as Assertion) error {
	ax, err := actx.triple(as)
	if err != nil {
		return err
	}
	iri, err := actx.resolve(as.Aspect)
	if err != nil {
		return err
	}
	aspects, err := actx.Store.AssertedAspects(actx.Ctx, ax)
	if err != nil {
		return err
	}

	want := ir.Class{IRI: iri}
	names := make([]string, 0, len(aspects))
	for _, asp := range aspects {
		if c, ok := asp.AsClass(); ok && c == want {
			return nil
		}
		names = append(names, ir.ExpressionSyntax(asp.Expression, actx.Base))
	}
	return &AssertionError{
		Type:     AssertInAspect,
		Expected: fmt.Sprintf("%s in aspect %s", ir.FunctionalSyntax(ax, actx.Base), ir.CompactIRI(actx.Base, iri)),
		Actual:   fmt.Sprintf("aspects %v", names),
	}
}

func assertAspectCount(actx *AssertionContext, as Assertion) error {
	ax, err := actx.triple(as)
	if err != nil {
		return err
	}
	aspects, err := actx.Store.AssertedAspects(actx.Ctx, ax)
	if err != nil {
		return err
	}
	if len(aspects) == as.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertAspectCount,
		Expected: fmt.Sprintf("%s in %d aspects", ir.FunctionalSyntax(ax, actx.Base), as.Count),
		Actual:   fmt.Sprintf("%d aspects", len(aspects)),
	}
}

func assertEquivalent(actx *AssertionContext, as Assertion) error {
	iri, err := actx.resolve(as.Class)
	if err != nil {
		return err
	}
	axioms, err := actx.Store.Axioms()
	if err != nil {
		return err
	}

	var found []string
	for _, ax := range axioms {
		eq, ok := ax.(ir.EquivalentClasses)
		if !ok || eq.Class.IRI != iri {
			continue
		}
		got := ir.ExpressionSyntax(eq.Expression, actx.Base)
		if got == as.Expression {
			return nil
		}
		found = append(found, got)
	}

	actual := "no equivalence axiom"
	if len(found) > 0 {
		actual = strings.Join(found, "; ")
	}
	return &AssertionError{
		Type:     AssertEquivalent,
		Expected: fmt.Sprintf("%s equivalent to %s", ir.CompactIRI(actx.Base, iri), as.Expression),
		Actual:   actual,
	}
}

func assertDeclared(actx *AssertionContext, as Assertion) error {
	iri, err := actx.resolve(as.Entity)
	if err != nil {
		return err
	}

	var ent ir.Entity
	switch as.Kind {
	case "class":
		ent = ir.Class{IRI: iri}
	case "individual":
		ent = ir.NamedIndividual{IRI: iri}
	case "property":
		ent = ir.ObjectProperty{IRI: iri}
	default:
		return fmt.Errorf("unknown entity kind %q", as.Kind)
	}

	decl := ir.Declaration{Entity: ent}
	if actx.Store.Contains(decl) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDeclared,
		Expected: ir.FunctionalSyntax(decl, actx.Base),
		Actual:   "not declared",
	}
}

func assertAxiomCount(actx *AssertionContext, as Assertion) error {
	if n := actx.Store.Len(); n != as.Count {
		return &AssertionError{
			Type:     AssertAxiomCount,
			Expected: fmt.Sprintf("%d axioms", as.Count),
			Actual:   fmt.Sprintf("%d axioms", n),
		}
	}
	return nil
}

// assertTraceCount checks if the built-in was invoked exactly the specified
// number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.BuiltIn == assertion.BuiltIn {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s invoked %d times", assertion.BuiltIn, assertion.Count),
			Actual:   fmt.Sprintf("%s invoked %d times", assertion.BuiltIn, count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks if built-ins first appear in the specified order.
// Invocations don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.BuiltIn]; !seen {
			positions[event.BuiltIn] = i + 1 // 1-indexed for readability
		}
	}

	for _, name := range assertion.BuiltIns {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all built-ins present: %v", assertion.BuiltIns),
				Actual:   fmt.Sprintf("missing built-in: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.BuiltIns); i++ {
		prev := assertion.BuiltIns[i-1]
		curr := assertion.BuiltIns[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("built-ins in order: %v", assertion.BuiltIns),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the ontology for fact, aspect and axiom
// assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertFact, AssertInAspect, AssertAspectCount, AssertEquivalent, AssertDeclared, AssertAxiomCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("%s requires an ontology", assertion.Type)
				break
			}
			err = evaluateOntologyAssertion(actx, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errors
}

func evaluateOntologyAssertion(actx *AssertionContext, as Assertion) error {
	if actx.Ctx == nil {
		actx.Ctx = context.Background()
	}
	switch as.Type {
	case AssertFact:
		return assertFact(actx, as)
	case AssertInAspect:
		return assertInAspect(actx, as)
	case AssertAspectCount:
		return assertAspectCount(actx, as)
	case AssertEquivalent:
		return assertEquivalent(actx, as)
	case AssertDeclared:
		return assertDeclared(actx, as)
	default:
		return assertAxiomCount(actx, as)
	}
}
