package ir

import (
	"bytes"
	"fmt"
)

// ClassExpression is a sealed interface over OWL class expressions.
// Only Class, ObjectHasValue, ObjectOneOf and ObjectUnionOf implement it.
//
// Expressions containing slices are not comparable with ==; use
// EqualExpressions.
type ClassExpression interface {
	// IsAnonymous reports whether the expression is anything but a named class.
	IsAnonymous() bool
	Encode() IRObject
	classExpression()
}

// Class is a named class. In aspect terms it names a context.
type Class struct {
	IRI string
}

func (Class) entity()           {}
func (Class) classExpression()  {}
func (Class) Kind() Kind        { return KindClass }
func (Class) IsAnonymous() bool { return false }

func (c Class) Encode() IRObject {
	return IRObject{"kind": IRString(KindClass.String()), "iri": IRString(c.IRI)}
}

func (c Class) String() string { return "<" + c.IRI + ">" }

// ObjectHasValue is the restriction "related to Individual via Property".
type ObjectHasValue struct {
	Property   ObjectProperty
	Individual NamedIndividual
}

func (ObjectHasValue) classExpression()  {}
func (ObjectHasValue) IsAnonymous() bool { return true }

func (h ObjectHasValue) Encode() IRObject {
	return IRObject{
		"kind":       IRString("OBJECT_HAS_VALUE"),
		"property":   IRString(h.Property.IRI),
		"individual": IRString(h.Individual.IRI),
	}
}

// ObjectOneOf is the enumeration {i1, ..., in}.
type ObjectOneOf struct {
	Individuals []NamedIndividual
}

func (ObjectOneOf) classExpression()  {}
func (ObjectOneOf) IsAnonymous() bool { return true }

func (o ObjectOneOf) Encode() IRObject {
	inds := make(IRArray, len(o.Individuals))
	for i, ind := range o.Individuals {
		inds[i] = IRString(ind.IRI)
	}
	return IRObject{"kind": IRString("OBJECT_ONE_OF"), "individuals": inds}
}

// ObjectUnionOf is the union of its operands.
type ObjectUnionOf struct {
	Operands []ClassExpression
}

func (ObjectUnionOf) classExpression()  {}
func (ObjectUnionOf) IsAnonymous() bool { return true }

func (u ObjectUnionOf) Encode() IRObject {
	ops := make(IRArray, len(u.Operands))
	for i, op := range u.Operands {
		ops[i] = op.Encode()
	}
	return IRObject{"kind": IRString("OBJECT_UNION_OF"), "operands": ops}
}

// EqualExpressions reports whether two class expressions are structurally equal.
func EqualExpressions(a, b ClassExpression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ca, errA := MarshalCanonical(a.Encode())
	cb, errB := MarshalCanonical(b.Encode())
	return errA == nil && errB == nil && bytes.Equal(ca, cb)
}

// DecodeClassExpression reverses ClassExpression.Encode.
func DecodeClassExpression(obj IRObject) (ClassExpression, error) {
	switch kind := obj.String("kind"); kind {
	case "CLASS":
		return Class{IRI: obj.String("iri")}, nil
	case "OBJECT_HAS_VALUE":
		return ObjectHasValue{
			Property:   ObjectProperty{IRI: obj.String("property")},
			Individual: NamedIndividual{IRI: obj.String("individual")},
		}, nil
	case "OBJECT_ONE_OF":
		arr, _ := obj["individuals"].(IRArray)
		inds := make([]NamedIndividual, 0, len(arr))
		for i, v := range arr {
			s, ok := v.(IRString)
			if !ok {
				return nil, fmt.Errorf("individuals[%d]: expected string, got %T", i, v)
			}
			inds = append(inds, NamedIndividual{IRI: string(s)})
		}
		return ObjectOneOf{Individuals: inds}, nil
	case "OBJECT_UNION_OF":
		arr, _ := obj["operands"].(IRArray)
		ops := make([]ClassExpression, 0, len(arr))
		for i, v := range arr {
			o, ok := v.(IRObject)
			if !ok {
				return nil, fmt.Errorf("operands[%d]: expected object, got %T", i, v)
			}
			op, err := DecodeClassExpression(o)
			if err != nil {
				return nil, fmt.Errorf("operands[%d]: %w", i, err)
			}
			ops = append(ops, op)
		}
		return ObjectUnionOf{Operands: ops}, nil
	default:
		return nil, fmt.Errorf("unknown class expression kind %q", kind)
	}
}
