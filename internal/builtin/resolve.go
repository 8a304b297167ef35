package builtin

import (
	"fmt"

	"github.com/roach88/aspectswrl/internal/ir"
)

// invocation carries one call through argument resolution.
type invocation struct {
	name     string // local built-in name, e.g. "opa"
	rule     string
	args     []Argument
	bindings Bindings
}

func newInvocation(name string, call Call) *invocation {
	b := call.Bindings
	if b == nil {
		b = discardBindings{}
	}
	return &invocation{name: name, rule: call.Rule, args: call.Args, bindings: b}
}

func (inv *invocation) fail(code ErrorCode, format string, a ...any) *Error {
	return &Error{
		Code:    code,
		BuiltIn: Namespace + inv.name,
		Rule:    inv.rule,
		Message: fmt.Sprintf(format, a...),
	}
}

// checkArity must run before any other validation.
func (inv *invocation) checkArity(n int) error {
	if len(inv.args) != n {
		return inv.fail(ErrCodeArityMismatch, "Expecting %d argument(s), got %d.", n, len(inv.args))
	}
	return nil
}

// unbound reports whether the argument at pos (1-based) is a variable that is
// currently unbound, and returns it.
func (inv *invocation) unbound(pos int) (Variable, bool) {
	v, ok := inv.args[pos-1].(Variable)
	if !ok {
		return Variable{}, false
	}
	if _, bound := inv.bindings.Lookup(v.Name); bound {
		return Variable{}, false
	}
	return v, true
}

// resolve returns the concrete value of the argument at pos (1-based),
// dereferencing bound variables, and checks its kind against want.
// It never mutates anything.
func (inv *invocation) resolve(pos int, want ir.Kind) (ir.Entity, error) {
	switch arg := inv.args[pos-1].(type) {
	case Variable:
		val, bound := inv.bindings.Lookup(arg.Name)
		if !bound || val == nil {
			e := inv.fail(ErrCodeUnboundVariable, "Variable ?%s must be bound but is unbound.", arg.Name)
			e.Position, e.Variable = pos, arg.Name
			return nil, e
		}
		if got := val.Kind(); got != want {
			e := inv.fail(ErrCodeTypeMismatch,
				"Variable ?%s must be bound to a value of type %s but is %s.", arg.Name, want, got)
			e.Position, e.Variable, e.Expected, e.Actual = pos, arg.Name, want, got
			return nil, e
		}
		return val, nil
	case Value:
		if arg.Entity == nil {
			e := inv.fail(ErrCodeTypeMismatch, "Argument at position %d must be of type %s but is empty.", pos, want)
			e.Position, e.Expected = pos, want
			return nil, e
		}
		if got := arg.Entity.Kind(); got != want {
			e := inv.fail(ErrCodeTypeMismatch,
				"Argument at position %d must be of type %s but is %s.", pos, want, got)
			e.Position, e.Expected, e.Actual = pos, want, got
			return nil, e
		}
		return arg.Entity, nil
	default:
		e := inv.fail(ErrCodeTypeMismatch, "Argument at position %d has unsupported form %T.", pos, arg)
		e.Position, e.Expected = pos, want
		return nil, e
	}
}

func (inv *invocation) objectProperty(pos int) (ir.ObjectProperty, error) {
	v, err := inv.resolve(pos, ir.KindObjectProperty)
	if err != nil {
		return ir.ObjectProperty{}, err
	}
	return v.(ir.ObjectProperty), nil
}

func (inv *invocation) namedIndividual(pos int) (ir.NamedIndividual, error) {
	v, err := inv.resolve(pos, ir.KindNamedIndividual)
	if err != nil {
		return ir.NamedIndividual{}, err
	}
	return v.(ir.NamedIndividual), nil
}

func (inv *invocation) class(pos int) (ir.Class, error) {
	v, err := inv.resolve(pos, ir.KindClass)
	if err != nil {
		return ir.Class{}, err
	}
	return v.(ir.Class), nil
}

// boolean resolves a literal and parses it as xsd:boolean. Untyped literals
// are parsed by lexical form; any other datatype is rejected.
func (inv *invocation) boolean(pos int) (bool, error) {
	v, err := inv.resolve(pos, ir.KindLiteral)
	if err != nil {
		return false, err
	}
	lit := v.(ir.Literal)
	var (
		b    bool
		perr error
	)
	if lit.Datatype != "" && lit.Datatype != ir.XSDBoolean {
		perr = fmt.Errorf("datatype %s is not xsd:boolean", lit.Datatype)
	} else {
		b, perr = ir.ParseXSDBoolean(lit.Lexical)
	}
	if perr != nil {
		var e *Error
		if vr, ok := inv.args[pos-1].(Variable); ok {
			e = inv.fail(ErrCodeBooleanParse, "Variable ?%s is bound to %q, which is not a boolean.", vr.Name, lit.Lexical)
			e.Variable = vr.Name
		} else {
			e = inv.fail(ErrCodeBooleanParse, "Argument at position %d (%q) is not a boolean.", pos, lit.Lexical)
		}
		e.Position, e.Err = pos, perr
		return false, e
	}
	return b, nil
}
