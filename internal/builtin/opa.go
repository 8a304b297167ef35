package builtin

import (
	"context"

	"github.com/roach88/aspectswrl/internal/ir"
)

// opa is satisfied iff argument 2 is an object property r, arguments 3 and 4
// are individuals i1 and i2 with r(i1, i2) asserted, and argument 1 is an
// aspect in which r(i1, i2) holds.
//
//	opa(?a, r, i1, i2)
//
// When ?a is an unbound variable, every named aspect of r(i1, i2) is bound
// to it as a multi-valued result. Anonymous aspects are never enumerated.
// opa never mutates the ontology.
func (l *Library) opa(ctx context.Context, inv *invocation) (bool, error) {
	if err := inv.checkArity(4); err != nil {
		return false, err
	}

	op, err := inv.objectProperty(2)
	if err != nil {
		return false, err
	}
	i1, err := inv.namedIndividual(3)
	if err != nil {
		return false, err
	}
	i2, err := inv.namedIndividual(4)
	if err != nil {
		return false, err
	}

	joinPoint, found, err := l.ontology.FindObjectPropertyAssertion(ctx, op, i1, i2)
	if err != nil {
		return false, err
	}
	if !found {
		// No base assertion, so there is no aspect to test or enumerate.
		return false, nil
	}

	aspects, err := l.aspects.AssertedAspects(ctx, joinPoint)
	if err != nil {
		return false, err
	}

	if v, ok := inv.unbound(1); ok {
		named := make([]ir.Entity, 0, len(aspects))
		for _, a := range aspects {
			if c, ok := a.AsClass(); ok {
				named = append(named, c)
			}
		}
		// The multi-bind result is the answer, even for an empty set.
		return inv.bindings.BindMulti(v.Name, named), nil
	}

	aspect, err := inv.class(1)
	if err != nil {
		return false, err
	}
	for _, a := range aspects {
		if c, ok := a.AsClass(); ok && c == aspect {
			return true, nil
		}
	}
	return false, nil
}
