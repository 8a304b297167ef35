// Package memstore is an in-memory Ontology and AspectManager.
//
// Axioms and aspect memberships are kept as Mangle facts:
//
//	axiom(ID, Type, Body, Seq)
//	opa(Property, Subject, Object, ID)
//	nopa(Property, Subject, Object, ID)
//	in_aspect(AxiomID, AspectID, Aspect, Seq)
//
// Bodies are canonical JSON, IDs are content addresses from ir.AxiomID and
// ir.AspectID, so re-adding an axiom or aspect membership is a no-op.
// Every applied batch is recorded for inspection by tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/ir"
)

const (
	predAxiom    = "axiom"
	predOPA      = "opa"
	predNOPA     = "nopa"
	predInAspect = "in_aspect"
)

// Store is a mutex-guarded in-memory ontology.
type Store struct {
	mu      sync.Mutex
	iri     string
	facts   factstore.FactStore
	seq     int64
	batches [][]ir.Change
}

var (
	_ builtin.Ontology      = (*Store)(nil)
	_ builtin.AspectManager = (*Store)(nil)
)

// New returns an empty store for the ontology named iri.
func New(iri string) *Store {
	return &Store{iri: iri, facts: factstore.NewSimpleInMemoryStore()}
}

// IRI returns the ontology IRI.
func (s *Store) IRI() string {
	return s.iri
}

// ApplyChanges adds every axiom of the batch. The batch is validated
// (encoded and hashed) before anything is added, so a failing batch leaves
// the store untouched.
func (s *Store) ApplyChanges(ctx context.Context, changes []ir.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type staged struct {
		ax   ir.Axiom
		id   string
		body string
	}
	batch := make([]staged, 0, len(changes))
	for i, c := range changes {
		if c.Axiom == nil {
			return fmt.Errorf("change %d: nil axiom", i)
		}
		id, err := ir.AxiomID(c.Axiom)
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
		body, err := ir.MarshalCanonical(c.Axiom.Encode())
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
		batch = append(batch, staged{ax: c.Axiom, id: id, body: string(body)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range batch {
		if s.hasAxiom(st.id) {
			continue
		}
		s.seq++
		s.facts.Add(ast.NewAtom(predAxiom,
			ast.String(st.id), ast.String(string(st.ax.Type())), ast.String(st.body), ast.Number(s.seq)))

		switch ax := st.ax.(type) {
		case ir.ObjectPropertyAssertion:
			s.facts.Add(tripleAtom(predOPA, ax.Property, ax.Subject, ax.Object, st.id))
		case ir.NegativeObjectPropertyAssertion:
			s.facts.Add(tripleAtom(predNOPA, ax.Property, ax.Subject, ax.Object, st.id))
		}
	}
	s.batches = append(s.batches, slices.Clone(changes))
	return nil
}

func tripleAtom(pred string, p ir.ObjectProperty, subj, obj ir.NamedIndividual, id string) ast.Atom {
	return ast.NewAtom(pred, ast.String(p.IRI), ast.String(subj.IRI), ast.String(obj.IRI), ast.String(id))
}

// lookup builds a query atom with the leading args bound and the rest free,
// so the fact store matches the constants instead of the callback.
func lookup(pred string, arity int, bound ...string) ast.Atom {
	args := make([]ast.BaseTerm, arity)
	for i := range args {
		if i < len(bound) {
			args[i] = ast.String(bound[i])
		} else {
			args[i] = ast.Variable{Symbol: fmt.Sprintf("X%d", i)}
		}
	}
	return ast.Atom{Predicate: ast.PredicateSym{Symbol: pred, Arity: arity}, Args: args}
}

// first returns the first fact matching query, if any.
func (s *Store) first(query ast.Atom) (ast.Atom, bool) {
	var (
		hit   ast.Atom
		found bool
	)
	_ = s.facts.GetFacts(query, func(a ast.Atom) error {
		if !found {
			hit, found = a, true
		}
		return nil
	})
	return hit, found
}

// hasAxiom must be called with mu held.
func (s *Store) hasAxiom(id string) bool {
	_, ok := s.first(lookup(predAxiom, 4, id))
	return ok
}

// findTriple returns the axiom ID recorded under pred for p(subj, obj).
// Must be called with mu held.
func (s *Store) findTriple(pred string, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (string, bool) {
	a, ok := s.first(lookup(pred, 4, p.IRI, subj.IRI, obj.IRI))
	if !ok {
		return "", false
	}
	return symbol(a.Args[3]), true
}

// FindObjectPropertyAssertion implements builtin.Ontology.
func (s *Store) FindObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (ir.ObjectPropertyAssertion, bool, error) {
	if err := ctx.Err(); err != nil {
		return ir.ObjectPropertyAssertion{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findTriple(predOPA, p, subj, obj); !ok {
		return ir.ObjectPropertyAssertion{}, false, nil
	}
	return ir.ObjectPropertyAssertion{Property: p, Subject: subj, Object: obj}, true, nil
}

// FindNegativeObjectPropertyAssertion implements builtin.Ontology.
func (s *Store) FindNegativeObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (ir.NegativeObjectPropertyAssertion, bool, error) {
	if err := ctx.Err(); err != nil {
		return ir.NegativeObjectPropertyAssertion{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findTriple(predNOPA, p, subj, obj); !ok {
		return ir.NegativeObjectPropertyAssertion{}, false, nil
	}
	return ir.NegativeObjectPropertyAssertion{Property: p, Subject: subj, Object: obj}, true, nil
}

// AddAspectAssertion implements builtin.AspectManager.
func (s *Store) AddAspectAssertion(ctx context.Context, a ir.AspectAssertion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Pointcut.Axiom == nil || a.Aspect.Expression == nil {
		return fmt.Errorf("aspect assertion: missing axiom or aspect")
	}
	axID, err := ir.AxiomID(a.Pointcut.Axiom)
	if err != nil {
		return fmt.Errorf("aspect assertion: %w", err)
	}
	aspectID, err := ir.AspectID(a.Aspect)
	if err != nil {
		return fmt.Errorf("aspect assertion: %w", err)
	}
	body, err := ir.MarshalCanonical(a.Aspect.Expression.Encode())
	if err != nil {
		return fmt.Errorf("aspect assertion: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.first(lookup(predInAspect, 4, axID, aspectID)); exists {
		return nil
	}
	s.seq++
	s.facts.Add(ast.NewAtom(predInAspect,
		ast.String(axID), ast.String(aspectID), ast.String(string(body)), ast.Number(s.seq)))
	return nil
}

// AssertedAspects implements builtin.AspectManager. Aspects are returned in
// the order they were asserted.
func (s *Store) AssertedAspects(ctx context.Context, ax ir.Axiom) ([]ir.Aspect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	axID, err := ir.AxiomID(ax)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		seq  int64
		body string
	}
	var rows []row
	_ = s.facts.GetFacts(lookup(predInAspect, 4, axID), func(f ast.Atom) error {
		rows = append(rows, row{seq: number(f.Args[3]), body: symbol(f.Args[2])})
		return nil
	})
	slices.SortFunc(rows, func(a, b row) int { return int(a.seq - b.seq) })

	aspects := make([]ir.Aspect, 0, len(rows))
	for _, r := range rows {
		obj, err := ir.UnmarshalIRObject([]byte(r.body))
		if err != nil {
			return nil, fmt.Errorf("decode aspect: %w", err)
		}
		expr, err := ir.DecodeClassExpression(obj)
		if err != nil {
			return nil, fmt.Errorf("decode aspect: %w", err)
		}
		aspects = append(aspects, ir.Aspect{Expression: expr})
	}
	return aspects, nil
}

// Axioms returns every axiom in insertion order.
func (s *Store) Axioms() ([]ir.Axiom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		seq  int64
		body string
	}
	var rows []row
	_ = s.facts.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: predAxiom, Arity: 4}), func(f ast.Atom) error {
		rows = append(rows, row{seq: number(f.Args[3]), body: symbol(f.Args[2])})
		return nil
	})
	slices.SortFunc(rows, func(a, b row) int { return int(a.seq - b.seq) })

	out := make([]ir.Axiom, 0, len(rows))
	for _, r := range rows {
		obj, err := ir.UnmarshalIRObject([]byte(r.body))
		if err != nil {
			return nil, fmt.Errorf("decode axiom: %w", err)
		}
		ax, err := ir.DecodeAxiom(obj)
		if err != nil {
			return nil, fmt.Errorf("decode axiom: %w", err)
		}
		out = append(out, ax)
	}
	return out, nil
}

// Contains reports whether ax is in the store.
func (s *Store) Contains(ax ir.Axiom) bool {
	id, err := ir.AxiomID(ax)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAxiom(id)
}

// Batches returns every batch passed to ApplyChanges, in order.
func (s *Store) Batches() [][]ir.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]ir.Change, len(s.batches))
	for i, b := range s.batches {
		out[i] = slices.Clone(b)
	}
	return out
}

// Len returns the number of distinct axioms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	_ = s.facts.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: predAxiom, Arity: 4}), func(ast.Atom) error {
		n++
		return nil
	})
	return n
}

func symbol(t ast.BaseTerm) string {
	if c, ok := t.(ast.Constant); ok {
		return c.Symbol
	}
	return ""
}

func number(t ast.BaseTerm) int64 {
	if c, ok := t.(ast.Constant); ok {
		return c.NumValue
	}
	return 0
}
