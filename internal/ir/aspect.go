package ir

// Aspect is a context: a class expression under which axioms are said to hold.
type Aspect struct {
	Expression ClassExpression
}

// NamedAspect wraps a named class as an aspect.
func NamedAspect(c Class) Aspect {
	return Aspect{Expression: c}
}

// IsAnonymous reports whether the aspect has no class name.
func (a Aspect) IsAnonymous() bool {
	return a.Expression == nil || a.Expression.IsAnonymous()
}

// AsClass returns the named class of the aspect.
// ok is false for anonymous aspects.
func (a Aspect) AsClass() (c Class, ok bool) {
	c, ok = a.Expression.(Class)
	return c, ok
}

// JoinPointAxiomPointcut selects a single axiom as the join point of an aspect.
type JoinPointAxiomPointcut struct {
	Axiom Axiom
}

// AspectAssertion states that the pointcut's axiom holds inside Aspect.
type AspectAssertion struct {
	Aspect   Aspect
	Pointcut JoinPointAxiomPointcut
}

// NewAspectAssertion ties axiom to aspect through a join-point pointcut.
func NewAspectAssertion(ax Axiom, aspect Aspect) AspectAssertion {
	return AspectAssertion{Aspect: aspect, Pointcut: JoinPointAxiomPointcut{Axiom: ax}}
}
