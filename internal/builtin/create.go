package builtin

import (
	"context"

	"github.com/roach88/aspectswrl/internal/ir"
)

// createOPA makes r(i1, i2) hold in an aspect, asserting r(i1, i2) first if
// needed.
//
//	createOPA(r, i1, i2, ?a)
//
// When ?a is unbound a fresh aspect class is declared and bound to it;
// otherwise argument 4 must resolve to a class. An existing assertion is
// reused, never duplicated. Always true once arguments resolve.
func (l *Library) createOPA(ctx context.Context, inv *invocation) (bool, error) {
	return l.createInAspect(ctx, inv, false)
}

// createNegativeOPA is createOPA for the negative assertion not r(i1, i2).
// It does not check for, or conflict with, a positive r(i1, i2).
func (l *Library) createNegativeOPA(ctx context.Context, inv *invocation) (bool, error) {
	return l.createInAspect(ctx, inv, true)
}

func (l *Library) createInAspect(ctx context.Context, inv *invocation, negative bool) (bool, error) {
	if err := inv.checkArity(4); err != nil {
		return false, err
	}

	op, err := inv.objectProperty(1)
	if err != nil {
		return false, err
	}
	i1, err := inv.namedIndividual(2)
	if err != nil {
		return false, err
	}
	i2, err := inv.namedIndividual(3)
	if err != nil {
		return false, err
	}

	aspectVar, fresh := inv.unbound(4)
	var aspect ir.Class
	if !fresh {
		if aspect, err = inv.class(4); err != nil {
			return false, err
		}
	}

	joinPoint, err := l.findOrBuild(ctx, op, i1, i2, negative)
	if err != nil {
		return false, err
	}

	// Arguments are valid from here on; only now may identifiers be minted.
	var cs ChangeSet
	cs.Assert(joinPoint)
	if fresh {
		aspect = l.freshClass(inv)
		cs.Declare(aspect)
	}
	if err := cs.Commit(ctx, l.ontology); err != nil {
		return false, err
	}

	if err := l.aspects.AddAspectAssertion(ctx, ir.NewAspectAssertion(joinPoint, ir.NamedAspect(aspect))); err != nil {
		return false, err
	}

	if fresh {
		inv.bindings.Bind(aspectVar.Name, aspect)
	}
	return true, nil
}

// findOrBuild returns the existing (negative) assertion for the triple, or a
// new, not yet asserted one.
func (l *Library) findOrBuild(ctx context.Context, op ir.ObjectProperty, i1, i2 ir.NamedIndividual, negative bool) (ir.Axiom, error) {
	if negative {
		ax, found, err := l.ontology.FindNegativeObjectPropertyAssertion(ctx, op, i1, i2)
		if err != nil {
			return nil, err
		}
		if found {
			return ax, nil
		}
		return ir.NegativeObjectPropertyAssertion{Property: op, Subject: i1, Object: i2}, nil
	}

	ax, found, err := l.ontology.FindObjectPropertyAssertion(ctx, op, i1, i2)
	if err != nil {
		return nil, err
	}
	if found {
		return ax, nil
	}
	return ir.ObjectPropertyAssertion{Property: op, Subject: i1, Object: i2}, nil
}
