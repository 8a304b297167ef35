package ir

import (
	"fmt"
	"strings"
)

// Kind is the closed set of runtime kinds a built-in argument can carry.
type Kind int

const (
	KindObjectProperty Kind = iota + 1
	KindNamedIndividual
	KindClass
	KindLiteral
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindObjectProperty:
		return "OBJECT_PROPERTY"
	case KindNamedIndividual:
		return "NAMED_INDIVIDUAL"
	case KindClass:
		return "CLASS"
	case KindLiteral:
		return "LITERAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "OBJECT_PROPERTY":
		return KindObjectProperty, nil
	case "NAMED_INDIVIDUAL":
		return KindNamedIndividual, nil
	case "CLASS":
		return KindClass, nil
	case "LITERAL":
		return KindLiteral, nil
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// Entity is a sealed interface over the values a built-in argument can hold.
type Entity interface {
	Kind() Kind
	// Encode returns the canonical encoding of the entity.
	Encode() IRObject
	entity()
}

// ObjectProperty is a relation label, e.g. <http://example.org/family#knows>.
type ObjectProperty struct {
	IRI string
}

func (ObjectProperty) entity()    {}
func (ObjectProperty) Kind() Kind { return KindObjectProperty }

func (p ObjectProperty) Encode() IRObject {
	return IRObject{"kind": IRString(KindObjectProperty.String()), "iri": IRString(p.IRI)}
}

func (p ObjectProperty) String() string { return "<" + p.IRI + ">" }

// NamedIndividual is an opaque individual identifier.
type NamedIndividual struct {
	IRI string
}

func (NamedIndividual) entity()    {}
func (NamedIndividual) Kind() Kind { return KindNamedIndividual }

func (i NamedIndividual) Encode() IRObject {
	return IRObject{"kind": IRString(KindNamedIndividual.String()), "iri": IRString(i.IRI)}
}

func (i NamedIndividual) String() string { return "<" + i.IRI + ">" }

// Literal is a typed lexical value.
type Literal struct {
	Lexical  string
	Datatype string
}

func (Literal) entity()    {}
func (Literal) Kind() Kind { return KindLiteral }

func (l Literal) Encode() IRObject {
	return IRObject{
		"kind":     IRString(KindLiteral.String()),
		"lexical":  IRString(l.Lexical),
		"datatype": IRString(l.Datatype),
	}
}

func (l Literal) String() string {
	if l.Datatype == "" {
		return fmt.Sprintf("%q", l.Lexical)
	}
	return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype)
}

// Class is declared in class.go; it is both an Entity and a ClassExpression.

// DecodeEntity reverses Entity.Encode.
func DecodeEntity(obj IRObject) (Entity, error) {
	kind, err := ParseKind(obj.String("kind"))
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindObjectProperty:
		return ObjectProperty{IRI: obj.String("iri")}, nil
	case KindNamedIndividual:
		return NamedIndividual{IRI: obj.String("iri")}, nil
	case KindClass:
		return Class{IRI: obj.String("iri")}, nil
	case KindLiteral:
		return Literal{Lexical: obj.String("lexical"), Datatype: obj.String("datatype")}, nil
	}
	return nil, fmt.Errorf("unknown entity kind %v", kind)
}

// ExpandIRI resolves name against base. Absolute IRIs (containing "://" or
// starting with "urn:") and <bracketed> IRIs are returned unbracketed as-is.
func ExpandIRI(base, name string) string {
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		return name[1 : len(name)-1]
	}
	if strings.Contains(name, "://") || strings.HasPrefix(name, "urn:") || base == "" {
		return name
	}
	if strings.HasSuffix(base, "#") || strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "#" + name
}

// CompactIRI is the inverse of ExpandIRI for IRIs under base.
// IRIs outside base are returned unchanged.
func CompactIRI(base, iri string) string {
	if base == "" {
		return iri
	}
	prefix := base
	if !strings.HasSuffix(base, "#") && !strings.HasSuffix(base, "/") {
		prefix = base + "#"
	}
	if local, ok := strings.CutPrefix(iri, prefix); ok && local != "" {
		return local
	}
	return iri
}
