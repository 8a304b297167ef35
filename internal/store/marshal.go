package store

import (
	"fmt"

	"github.com/roach88/aspectswrl/internal/ir"
)

// axiomRow is the column form of an axiom.
type axiomRow struct {
	id       string
	typ      ir.AxiomType
	property any // nil unless a (negative) object property assertion
	subject  any
	object   any
	body     string
}

// marshalAxiom converts an axiom to its row form.
// The body is RFC 8785 canonical JSON, so the same axiom always yields the
// same bytes and the same id.
func marshalAxiom(ax ir.Axiom) (axiomRow, error) {
	if ax == nil {
		return axiomRow{}, fmt.Errorf("marshal axiom: nil axiom")
	}
	id, err := ir.AxiomID(ax)
	if err != nil {
		return axiomRow{}, fmt.Errorf("marshal axiom: %w", err)
	}
	body, err := ir.MarshalCanonical(ax.Encode())
	if err != nil {
		return axiomRow{}, fmt.Errorf("marshal axiom: %w", err)
	}

	row := axiomRow{id: id, typ: ax.Type(), body: string(body)}
	switch a := ax.(type) {
	case ir.ObjectPropertyAssertion:
		row.property, row.subject, row.object = a.Property.IRI, a.Subject.IRI, a.Object.IRI
	case ir.NegativeObjectPropertyAssertion:
		row.property, row.subject, row.object = a.Property.IRI, a.Subject.IRI, a.Object.IRI
	}
	return row, nil
}

// unmarshalAxiom decodes a stored axiom body.
func unmarshalAxiom(body string) (ir.Axiom, error) {
	obj, err := ir.UnmarshalIRObject([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("unmarshal axiom: %w", err)
	}
	ax, err := ir.DecodeAxiom(obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal axiom: %w", err)
	}
	return ax, nil
}

// marshalAspect returns the aspect id, its IRI (nil when anonymous) and its
// canonical JSON.
func marshalAspect(a ir.Aspect) (id string, iri any, body string, err error) {
	id, err = ir.AspectID(a)
	if err != nil {
		return "", nil, "", fmt.Errorf("marshal aspect: %w", err)
	}
	data, err := ir.MarshalCanonical(a.Expression.Encode())
	if err != nil {
		return "", nil, "", fmt.Errorf("marshal aspect: %w", err)
	}
	if c, ok := a.AsClass(); ok {
		iri = c.IRI
	}
	return id, iri, string(data), nil
}

// unmarshalAspect decodes a stored aspect expression.
func unmarshalAspect(body string) (ir.Aspect, error) {
	obj, err := ir.UnmarshalIRObject([]byte(body))
	if err != nil {
		return ir.Aspect{}, fmt.Errorf("unmarshal aspect: %w", err)
	}
	expr, err := ir.DecodeClassExpression(obj)
	if err != nil {
		return ir.Aspect{}, fmt.Errorf("unmarshal aspect: %w", err)
	}
	return ir.Aspect{Expression: expr}, nil
}
