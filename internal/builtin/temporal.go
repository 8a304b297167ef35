package builtin

import (
	"context"

	"github.com/roach88/aspectswrl/internal/ir"
)

// temporal defines an aspect intensionally as the set of instants related to
// an anchor instant.
//
//	temporal(?a, r, ?t, b)
//
// Stages ?a ≡ (r value ?t), or ?a ≡ (r value ?t) ⊔ {?t} when b is true, so
// that the anchor itself belongs to the aspect. Unbound ?a and ?t are
// synthesized, declared and bound. Always true once arguments resolve.
func (l *Library) temporal(ctx context.Context, inv *invocation) (bool, error) {
	if err := inv.checkArity(4); err != nil {
		return false, err
	}

	op, err := inv.objectProperty(2)
	if err != nil {
		return false, err
	}
	inclusive, err := inv.boolean(4)
	if err != nil {
		return false, err
	}

	aspectVar, freshAspect := inv.unbound(1)
	var aspect ir.Class
	if !freshAspect {
		if aspect, err = inv.class(1); err != nil {
			return false, err
		}
	}

	anchorVar, freshAnchor := inv.unbound(3)
	var anchor ir.NamedIndividual
	if !freshAnchor {
		if anchor, err = inv.namedIndividual(3); err != nil {
			return false, err
		}
	}

	var cs ChangeSet
	if freshAspect {
		aspect = l.freshClass(inv)
		cs.Declare(aspect)
	}
	if freshAnchor {
		anchor = l.freshIndividual(inv)
		cs.Declare(anchor)
	}
	cs.Assert(ir.EquivalentClasses{Class: aspect, Expression: TemporalExpression(op, anchor, inclusive)})

	if err := cs.Commit(ctx, l.ontology); err != nil {
		return false, err
	}

	if freshAspect {
		inv.bindings.Bind(aspectVar.Name, aspect)
	}
	if freshAnchor {
		inv.bindings.Bind(anchorVar.Name, anchor)
	}
	return true, nil
}

// TemporalExpression builds "r value t", extended with "{t}" when inclusive.
func TemporalExpression(op ir.ObjectProperty, anchor ir.NamedIndividual, inclusive bool) ir.ClassExpression {
	related := ir.ObjectHasValue{Property: op, Individual: anchor}
	if !inclusive {
		return related
	}
	return ir.ObjectUnionOf{Operands: []ir.ClassExpression{
		related,
		ir.ObjectOneOf{Individuals: []ir.NamedIndividual{anchor}},
	}}
}
