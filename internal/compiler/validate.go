package compiler

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrEmptyIRI             = "E200" // ontology iri is empty
	ErrEmptyName            = "E201" // empty entity name
	ErrDuplicateName        = "E202" // entity declared twice
	ErrUndeclaredProperty   = "E203" // fact or temporal uses an undeclared property
	ErrUndeclaredIndividual = "E204" // fact or temporal uses an undeclared individual
	ErrUndeclaredClass      = "E205" // aspect or temporal class not declared
)

// ValidationError represents a fixture validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is every validation error of one fixture.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// validateFixture checks declarations and references.
// Returns all errors found (does not fail-fast).
func validateFixture(src *fixture) []ValidationError {
	var errs []ValidationError
	add := func(code, field string, n name, format string, a ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, a...), Code: code, Line: n.pos.Line()})
	}

	if src.iri == "" {
		errs = append(errs, ValidationError{Field: "iri", Message: "iri must be non-empty", Code: ErrEmptyIRI})
	}

	declared := func(field string, names []name) map[string]bool {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			switch {
			case n.text == "":
				add(ErrEmptyName, field, n, "empty name")
			case set[n.text]:
				add(ErrDuplicateName, field, n, "%q declared twice", n.text)
			}
			set[n.text] = true
		}
		return set
	}
	props := declared("properties", src.properties)
	inds := declared("individuals", src.individuals)
	classes := declared("classes", src.classes)

	checkProp := func(field string, n name) {
		if !props[n.text] {
			add(ErrUndeclaredProperty, field, n, "property %q is not declared", n.text)
		}
	}
	checkInd := func(field string, n name) {
		if !inds[n.text] {
			add(ErrUndeclaredIndividual, field, n, "individual %q is not declared", n.text)
		}
	}
	checkClass := func(field string, n name) {
		if !classes[n.text] {
			add(ErrUndeclaredClass, field, n, "class %q is not declared", n.text)
		}
	}

	for i, f := range src.facts {
		field := fmt.Sprintf("facts[%d]", i)
		checkProp(field+".property", f.property)
		checkInd(field+".subject", f.subject)
		checkInd(field+".object", f.object)
		for _, a := range f.aspects {
			checkClass(field+".aspects", a)
		}
	}
	for i, t := range src.temporal {
		field := fmt.Sprintf("temporal[%d]", i)
		checkClass(field+".aspect", t.aspect)
		checkProp(field+".property", t.property)
		checkInd(field+".anchor", t.anchor)
	}

	return errs
}
