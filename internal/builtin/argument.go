package builtin

import (
	"fmt"
	"strings"

	"github.com/roach88/aspectswrl/internal/ir"
)

// Argument is one positional built-in argument: a Value or a Variable.
type Argument interface {
	argument()
}

// Value is a concrete argument.
type Value struct {
	Entity ir.Entity
}

func (Value) argument() {}

// Variable refers to a rule variable owned by the caller's Bindings.
type Variable struct {
	Name string
}

func (Variable) argument() {}

// V wraps an entity as a Value argument.
func V(e ir.Entity) Argument { return Value{Entity: e} }

// Var returns a Variable argument. A leading "?" is stripped.
func Var(name string) Argument { return Variable{Name: strings.TrimPrefix(name, "?")} }

// Bindings is the caller's variable binding table.
type Bindings interface {
	// Lookup returns the value bound to name; ok is false when unbound.
	Lookup(name string) (v ir.Entity, ok bool)

	// Bind binds name to a single value.
	Bind(name string, v ir.Entity)

	// BindMulti binds name to a set of alternative values, one per branch of
	// the caller's search. The result is the binding table's own success
	// signal and is returned verbatim by enumerating built-ins.
	BindMulti(name string, vs []ir.Entity) bool
}

// Call is the envelope of a single built-in invocation.
type Call struct {
	// Rule names the invoking rule; it appears in every error message.
	Rule string

	Args []Argument

	// Bindings may be nil, in which case every variable is unbound and
	// output bindings are discarded.
	Bindings Bindings
}

type discardBindings struct{}

func (discardBindings) Lookup(string) (ir.Entity, bool)    { return nil, false }
func (discardBindings) Bind(string, ir.Entity)             {}
func (discardBindings) BindMulti(string, []ir.Entity) bool { return true }

// ParseArgument parses the textual argument syntax of the CLI and scenario files:
//
//	?x                      variable x
//	prop:knows              object property
//	ind:alice               named individual
//	class:Trust             class
//	lit:true                literal with no datatype
//	lit:true^^xsd:boolean   typed literal (xsd: expands to the XML Schema namespace)
//
// Names that are not absolute IRIs are resolved against base.
func ParseArgument(s, base string) (Argument, error) {
	if name, ok := strings.CutPrefix(s, "?"); ok {
		if name == "" {
			return nil, fmt.Errorf("empty variable name in %q", s)
		}
		return Var(name), nil
	}

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("argument %q: expected ?var or prop:|ind:|class:|lit: prefix", s)
	}

	switch scheme {
	case "prop":
		return V(ir.ObjectProperty{IRI: ir.ExpandIRI(base, rest)}), nil
	case "ind":
		return V(ir.NamedIndividual{IRI: ir.ExpandIRI(base, rest)}), nil
	case "class":
		return V(ir.Class{IRI: ir.ExpandIRI(base, rest)}), nil
	case "lit":
		lexical, datatype, _ := strings.Cut(rest, "^^")
		if dt, ok := strings.CutPrefix(datatype, "xsd:"); ok {
			datatype = ir.XSDNamespace + dt
		}
		return V(ir.Literal{Lexical: lexical, Datatype: datatype}), nil
	default:
		return nil, fmt.Errorf("argument %q: unknown prefix %q", s, scheme)
	}
}

// ParseArguments parses each of args with ParseArgument.
func ParseArguments(args []string, base string) ([]Argument, error) {
	out := make([]Argument, len(args))
	for i, a := range args {
		arg, err := ParseArgument(a, base)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = arg
	}
	return out, nil
}

// FormatEntity renders an entity in ParseArgument syntax, compacting IRIs under base.
func FormatEntity(e ir.Entity, base string) string {
	switch v := e.(type) {
	case ir.ObjectProperty:
		return "prop:" + ir.CompactIRI(base, v.IRI)
	case ir.NamedIndividual:
		return "ind:" + ir.CompactIRI(base, v.IRI)
	case ir.Class:
		return "class:" + ir.CompactIRI(base, v.IRI)
	case ir.Literal:
		if dt, ok := strings.CutPrefix(v.Datatype, ir.XSDNamespace); ok {
			return "lit:" + v.Lexical + "^^xsd:" + dt
		}
		if v.Datatype != "" {
			return "lit:" + v.Lexical + "^^" + v.Datatype
		}
		return "lit:" + v.Lexical
	default:
		return fmt.Sprintf("%v", e)
	}
}
