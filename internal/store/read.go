package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/aspectswrl/internal/ir"
)

// FindObjectPropertyAssertion returns the assertion p(subj, obj) if present.
func (s *Store) FindObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (ir.ObjectPropertyAssertion, bool, error) {
	found, err := s.findTriple(ctx, ir.AxiomObjectPropertyAssertion, p, subj, obj)
	if err != nil || !found {
		return ir.ObjectPropertyAssertion{}, false, err
	}
	return ir.ObjectPropertyAssertion{Property: p, Subject: subj, Object: obj}, true, nil
}

// FindNegativeObjectPropertyAssertion returns the negative assertion
// not p(subj, obj) if present.
func (s *Store) FindNegativeObjectPropertyAssertion(ctx context.Context, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (ir.NegativeObjectPropertyAssertion, bool, error) {
	found, err := s.findTriple(ctx, ir.AxiomNegativeObjectPropertyAssertion, p, subj, obj)
	if err != nil || !found {
		return ir.NegativeObjectPropertyAssertion{}, false, err
	}
	return ir.NegativeObjectPropertyAssertion{Property: p, Subject: subj, Object: obj}, true, nil
}

func (s *Store) findTriple(ctx context.Context, typ ir.AxiomType, p ir.ObjectProperty, subj, obj ir.NamedIndividual) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM axioms
		WHERE type = ? AND property = ? AND subject = ? AND object = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
		LIMIT 1
	`, string(typ), p.IRI, subj.IRI, obj.IRI).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find %s: %w", typ, err)
	}
	return true, nil
}

// AssertedAspects returns every aspect asserted for ax, in assertion order.
// Returns an empty slice (not nil) when there are none.
func (s *Store) AssertedAspects(ctx context.Context, ax ir.Axiom) ([]ir.Aspect, error) {
	axiomID, err := ir.AxiomID(ax)
	if err != nil {
		return nil, fmt.Errorf("asserted aspects: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT aspect FROM aspect_assertions
		WHERE axiom_id = ?
		ORDER BY seq ASC, aspect_id COLLATE BINARY ASC
	`, axiomID)
	if err != nil {
		return nil, fmt.Errorf("query aspect assertions: %w", err)
	}
	defer rows.Close()

	aspects := []ir.Aspect{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan aspect assertion: %w", err)
		}
		a, err := unmarshalAspect(body)
		if err != nil {
			return nil, err
		}
		aspects = append(aspects, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aspect assertions: %w", err)
	}
	return aspects, nil
}

// Axioms returns every axiom in insertion order.
func (s *Store) Axioms(ctx context.Context) ([]ir.Axiom, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM axioms
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query axioms: %w", err)
	}
	defer rows.Close()

	axioms := []ir.Axiom{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan axiom: %w", err)
		}
		ax, err := unmarshalAxiom(body)
		if err != nil {
			return nil, err
		}
		axioms = append(axioms, ax)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate axioms: %w", err)
	}
	return axioms, nil
}

// AspectAssertions returns every aspect assertion, ordered by axiom
// insertion and then assertion order.
func (s *Store) AspectAssertions(ctx context.Context) ([]ir.AspectAssertion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ax.body, aa.aspect
		FROM aspect_assertions aa
		JOIN axioms ax ON ax.id = aa.axiom_id
		ORDER BY ax.seq ASC, aa.seq ASC, aa.aspect_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query aspect assertions: %w", err)
	}
	defer rows.Close()

	out := []ir.AspectAssertion{}
	for rows.Next() {
		var axBody, aspectBody string
		if err := rows.Scan(&axBody, &aspectBody); err != nil {
			return nil, fmt.Errorf("scan aspect assertion: %w", err)
		}
		ax, err := unmarshalAxiom(axBody)
		if err != nil {
			return nil, err
		}
		a, err := unmarshalAspect(aspectBody)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.NewAspectAssertion(ax, a))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aspect assertions: %w", err)
	}
	return out, nil
}

// CountAxioms returns the number of distinct axioms.
func (s *Store) CountAxioms(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM axioms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count axioms: %w", err)
	}
	return n, nil
}
