// Package compiler compiles CUE ontology fixtures into ontology changes and
// aspect assertions.
//
// A fixture declares entities by local name and states facts over them:
//
//	ontology: {
//		iri: "http://example.org/family#"
//		properties: ["knows", "after"]
//		individuals: ["alice", "bob", "noon"]
//		classes: ["Trust"]
//		facts: [
//			{property: "knows", subject: "alice", object: "bob", aspects: ["Trust"]},
//			{property: "knows", subject: "bob", object: "alice", negative: true},
//		]
//		temporal: [
//			{aspect: "Afternoon", property: "after", anchor: "noon", inclusive: true},
//		]
//	}
//
// Local names expand against iri; absolute IRIs and <bracketed> IRIs are
// taken as is.
package compiler

import (
	"context"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/ir"
)

// Ontology is a compiled fixture.
type Ontology struct {
	IRI string

	// Changes declares every entity, then adds facts and temporal
	// equivalences, in fixture order.
	Changes []ir.Change

	// Aspects holds the aspect memberships of facts, in fixture order.
	Aspects []ir.AspectAssertion
}

// Load applies the compiled changes as one batch, then registers the aspect
// assertions.
func (o *Ontology) Load(ctx context.Context, ont builtin.Ontology, aspects builtin.AspectManager) error {
	if err := ont.ApplyChanges(ctx, o.Changes); err != nil {
		return fmt.Errorf("load ontology: %w", err)
	}
	for _, a := range o.Aspects {
		if err := aspects.AddAspectAssertion(ctx, a); err != nil {
			return fmt.Errorf("load ontology: %w", err)
		}
	}
	return nil
}

// CompileFile reads and compiles a CUE fixture file.
func CompileFile(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return CompileSource(path, data)
}

// CompileSource compiles CUE fixture source. filename is used in error
// positions.
func CompileSource(filename string, src []byte) (*Ontology, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ontVal := v.LookupPath(cue.ParsePath("ontology"))
	if !ontVal.Exists() {
		return nil, &CompileError{Field: "ontology", Message: "ontology is required", Pos: v.Pos()}
	}
	return CompileOntology(ontVal)
}

// CompileOntology compiles the ontology struct of a fixture.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func CompileOntology(v cue.Value) (*Ontology, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iriVal := v.LookupPath(cue.ParsePath("iri"))
	if !iriVal.Exists() {
		return nil, &CompileError{Field: "iri", Message: "iri is required", Pos: v.Pos()}
	}
	iri, err := iriVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	src := &fixture{iri: iri}
	if src.properties, err = parseNames(v, "properties"); err != nil {
		return nil, err
	}
	if src.individuals, err = parseNames(v, "individuals"); err != nil {
		return nil, err
	}
	if src.classes, err = parseNames(v, "classes"); err != nil {
		return nil, err
	}
	if src.facts, err = parseFacts(v); err != nil {
		return nil, err
	}
	if src.temporal, err = parseTemporal(v); err != nil {
		return nil, err
	}

	if errs := validateFixture(src); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return build(src), nil
}

// fixture is the parsed, not yet expanded, form of an ontology struct.
type fixture struct {
	iri         string
	properties  []name
	individuals []name
	classes     []name
	facts       []fact
	temporal    []temporal
}

type name struct {
	text string
	pos  token.Pos
}

type fact struct {
	property, subject, object name
	negative                  bool
	aspects                   []name
	pos                       token.Pos
}

type temporal struct {
	aspect, property, anchor name
	inclusive                bool
	pos                      token.Pos
}

func parseNames(v cue.Value, field string) ([]name, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var names []name
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		names = append(names, name{text: s, pos: iter.Value().Pos()})
	}
	return names, nil
}

func requiredName(v cue.Value, field string) (name, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return name{}, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return name{}, formatCUEError(err)
	}
	return name{text: s, pos: fv.Pos()}, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func parseFacts(v cue.Value) ([]fact, error) {
	listVal := v.LookupPath(cue.ParsePath("facts"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var facts []fact
	for iter.Next() {
		fv := iter.Value()
		f := fact{pos: fv.Pos()}
		if f.property, err = requiredName(fv, "property"); err != nil {
			return nil, err
		}
		if f.subject, err = requiredName(fv, "subject"); err != nil {
			return nil, err
		}
		if f.object, err = requiredName(fv, "object"); err != nil {
			return nil, err
		}
		if f.negative, err = optionalBool(fv, "negative"); err != nil {
			return nil, err
		}
		if f.aspects, err = parseNames(fv, "aspects"); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func parseTemporal(v cue.Value) ([]temporal, error) {
	listVal := v.LookupPath(cue.ParsePath("temporal"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []temporal
	for iter.Next() {
		tv := iter.Value()
		t := temporal{pos: tv.Pos()}
		if t.aspect, err = requiredName(tv, "aspect"); err != nil {
			return nil, err
		}
		if t.property, err = requiredName(tv, "property"); err != nil {
			return nil, err
		}
		if t.anchor, err = requiredName(tv, "anchor"); err != nil {
			return nil, err
		}
		if t.inclusive, err = optionalBool(tv, "inclusive"); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// build expands names and emits declarations first, then facts and temporal
// equivalences in fixture order.
func build(src *fixture) *Ontology {
	o := &Ontology{IRI: src.iri}
	expand := func(n name) string { return ir.ExpandIRI(src.iri, n.text) }

	var cs builtin.ChangeSet
	for _, n := range src.properties {
		cs.Declare(ir.ObjectProperty{IRI: expand(n)})
	}
	for _, n := range src.individuals {
		cs.Declare(ir.NamedIndividual{IRI: expand(n)})
	}
	for _, n := range src.classes {
		cs.Declare(ir.Class{IRI: expand(n)})
	}

	for _, f := range src.facts {
		p := ir.ObjectProperty{IRI: expand(f.property)}
		s := ir.NamedIndividual{IRI: expand(f.subject)}
		obj := ir.NamedIndividual{IRI: expand(f.object)}

		var ax ir.Axiom = ir.ObjectPropertyAssertion{Property: p, Subject: s, Object: obj}
		if f.negative {
			ax = ir.NegativeObjectPropertyAssertion{Property: p, Subject: s, Object: obj}
		}
		cs.Assert(ax)
		for _, a := range f.aspects {
			o.Aspects = append(o.Aspects, ir.NewAspectAssertion(ax, ir.NamedAspect(ir.Class{IRI: expand(a)})))
		}
	}

	for _, t := range src.temporal {
		expr := builtin.TemporalExpression(
			ir.ObjectProperty{IRI: expand(t.property)},
			ir.NamedIndividual{IRI: expand(t.anchor)},
			t.inclusive,
		)
		cs.Assert(ir.EquivalentClasses{Class: ir.Class{IRI: expand(t.aspect)}, Expression: expr})
	}

	o.Changes = cs.Changes()
	return o
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
