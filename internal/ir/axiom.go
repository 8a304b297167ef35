package ir

import "fmt"

// AxiomType names an axiom variant. Stored verbatim in the axioms table.
type AxiomType string

const (
	AxiomObjectPropertyAssertion         AxiomType = "OBJECT_PROPERTY_ASSERTION"
	AxiomNegativeObjectPropertyAssertion AxiomType = "NEGATIVE_OBJECT_PROPERTY_ASSERTION"
	AxiomDeclaration                     AxiomType = "DECLARATION"
	AxiomEquivalentClasses               AxiomType = "EQUIVALENT_CLASSES"
)

// Axiom is a sealed interface over the axioms this module reads or writes.
type Axiom interface {
	Type() AxiomType
	Encode() IRObject
	axiom()
}

// ObjectPropertyAssertion is the base fact Property(Subject, Object).
type ObjectPropertyAssertion struct {
	Property ObjectProperty
	Subject  NamedIndividual
	Object   NamedIndividual
}

func (ObjectPropertyAssertion) axiom()          {}
func (ObjectPropertyAssertion) Type() AxiomType { return AxiomObjectPropertyAssertion }

func (a ObjectPropertyAssertion) Encode() IRObject {
	return encodeTriple(a.Type(), a.Property, a.Subject, a.Object)
}

func (a ObjectPropertyAssertion) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Property, a.Subject, a.Object)
}

// NegativeObjectPropertyAssertion states that Property(Subject, Object) does not hold.
type NegativeObjectPropertyAssertion struct {
	Property ObjectProperty
	Subject  NamedIndividual
	Object   NamedIndividual
}

func (NegativeObjectPropertyAssertion) axiom() {}
func (NegativeObjectPropertyAssertion) Type() AxiomType {
	return AxiomNegativeObjectPropertyAssertion
}

func (a NegativeObjectPropertyAssertion) Encode() IRObject {
	return encodeTriple(a.Type(), a.Property, a.Subject, a.Object)
}

func (a NegativeObjectPropertyAssertion) String() string {
	return fmt.Sprintf("not %s(%s, %s)", a.Property, a.Subject, a.Object)
}

func encodeTriple(t AxiomType, p ObjectProperty, s, o NamedIndividual) IRObject {
	return IRObject{
		"type":     IRString(t),
		"property": IRString(p.IRI),
		"subject":  IRString(s.IRI),
		"object":   IRString(o.IRI),
	}
}

// Declaration declares an entity in the ontology signature.
type Declaration struct {
	Entity Entity
}

func (Declaration) axiom()          {}
func (Declaration) Type() AxiomType { return AxiomDeclaration }

func (d Declaration) Encode() IRObject {
	return IRObject{"type": IRString(d.Type()), "entity": d.Entity.Encode()}
}

// EquivalentClasses defines Class as equivalent to Expression.
type EquivalentClasses struct {
	Class      Class
	Expression ClassExpression
}

func (EquivalentClasses) axiom()          {}
func (EquivalentClasses) Type() AxiomType { return AxiomEquivalentClasses }

func (e EquivalentClasses) Encode() IRObject {
	return IRObject{
		"type":       IRString(e.Type()),
		"class":      IRString(e.Class.IRI),
		"expression": e.Expression.Encode(),
	}
}

// DecodeAxiom reverses Axiom.Encode.
func DecodeAxiom(obj IRObject) (Axiom, error) {
	switch t := AxiomType(obj.String("type")); t {
	case AxiomObjectPropertyAssertion:
		return ObjectPropertyAssertion{
			Property: ObjectProperty{IRI: obj.String("property")},
			Subject:  NamedIndividual{IRI: obj.String("subject")},
			Object:   NamedIndividual{IRI: obj.String("object")},
		}, nil
	case AxiomNegativeObjectPropertyAssertion:
		return NegativeObjectPropertyAssertion{
			Property: ObjectProperty{IRI: obj.String("property")},
			Subject:  NamedIndividual{IRI: obj.String("subject")},
			Object:   NamedIndividual{IRI: obj.String("object")},
		}, nil
	case AxiomDeclaration:
		entObj, ok := obj["entity"].(IRObject)
		if !ok {
			return nil, fmt.Errorf("declaration: missing entity")
		}
		ent, err := DecodeEntity(entObj)
		if err != nil {
			return nil, fmt.Errorf("declaration: %w", err)
		}
		return Declaration{Entity: ent}, nil
	case AxiomEquivalentClasses:
		exprObj, ok := obj["expression"].(IRObject)
		if !ok {
			return nil, fmt.Errorf("equivalent classes: missing expression")
		}
		expr, err := DecodeClassExpression(exprObj)
		if err != nil {
			return nil, fmt.Errorf("equivalent classes: %w", err)
		}
		return EquivalentClasses{Class: Class{IRI: obj.String("class")}, Expression: expr}, nil
	default:
		return nil, fmt.Errorf("unknown axiom type %q", t)
	}
}

// Change is a staged ontology mutation.
// AddAxiom is the only change kind the built-ins produce.
type Change struct {
	Axiom Axiom
}

// AddAxiom stages the addition of an axiom.
func AddAxiom(ax Axiom) Change {
	return Change{Axiom: ax}
}
