package ir

import (
	"fmt"
	"strings"
)

// FunctionalSyntax renders ax in OWL functional-style syntax, with IRIs
// under base shortened to their local names.
//
//	ObjectPropertyAssertion(knows alice bob)
//	EquivalentClasses(Afternoon ObjectUnionOf(ObjectHasValue(after noon) ObjectOneOf(noon)))
func FunctionalSyntax(ax Axiom, base string) string {
	name := func(iri string) string { return CompactIRI(base, iri) }

	switch a := ax.(type) {
	case ObjectPropertyAssertion:
		return fmt.Sprintf("ObjectPropertyAssertion(%s %s %s)", name(a.Property.IRI), name(a.Subject.IRI), name(a.Object.IRI))
	case NegativeObjectPropertyAssertion:
		return fmt.Sprintf("NegativeObjectPropertyAssertion(%s %s %s)", name(a.Property.IRI), name(a.Subject.IRI), name(a.Object.IRI))
	case Declaration:
		return fmt.Sprintf("Declaration(%s)", entitySyntax(a.Entity, base))
	case EquivalentClasses:
		return fmt.Sprintf("EquivalentClasses(%s %s)", name(a.Class.IRI), ExpressionSyntax(a.Expression, base))
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", ax)
	}
}

// ExpressionSyntax renders a class expression like FunctionalSyntax.
func ExpressionSyntax(e ClassExpression, base string) string {
	name := func(iri string) string { return CompactIRI(base, iri) }

	switch x := e.(type) {
	case Class:
		return name(x.IRI)
	case ObjectHasValue:
		return fmt.Sprintf("ObjectHasValue(%s %s)", name(x.Property.IRI), name(x.Individual.IRI))
	case ObjectOneOf:
		parts := make([]string, len(x.Individuals))
		for i, ind := range x.Individuals {
			parts[i] = name(ind.IRI)
		}
		return "ObjectOneOf(" + strings.Join(parts, " ") + ")"
	case ObjectUnionOf:
		parts := make([]string, len(x.Operands))
		for i, op := range x.Operands {
			parts[i] = ExpressionSyntax(op, base)
		}
		return "ObjectUnionOf(" + strings.Join(parts, " ") + ")"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", e)
	}
}

func entitySyntax(e Entity, base string) string {
	switch v := e.(type) {
	case ObjectProperty:
		return "ObjectProperty(" + CompactIRI(base, v.IRI) + ")"
	case NamedIndividual:
		return "NamedIndividual(" + CompactIRI(base, v.IRI) + ")"
	case Class:
		return "Class(" + CompactIRI(base, v.IRI) + ")"
	case Literal:
		return v.String()
	default:
		return fmt.Sprintf("%T", e)
	}
}
