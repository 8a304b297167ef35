package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/aspectswrl/internal/ir"
)

// ApplyChanges adds every axiom of the batch in a single transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: an axiom that is already
// present is silently skipped. Any error rolls back the whole batch.
func (s *Store) ApplyChanges(ctx context.Context, changes []ir.Change) error {
	rows := make([]axiomRow, len(changes))
	for i, c := range changes {
		row, err := marshalAxiom(c.Axiom)
		if err != nil {
			return fmt.Errorf("apply changes: change %d: %w", i, err)
		}
		rows[i] = row
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx, "axioms")
		if err != nil {
			return fmt.Errorf("apply changes: %w", err)
		}
		for i, row := range rows {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO axioms (id, seq, type, property, subject, object, body)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, row.id, seq, string(row.typ), row.property, row.subject, row.object, row.body)
			if err != nil {
				return fmt.Errorf("apply changes: change %d: %w", i, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				seq++
			}
		}
		return nil
	})
}

// AddAspectAssertion records that the pointcut's axiom holds in the aspect.
// Re-asserting an existing membership is a no-op.
func (s *Store) AddAspectAssertion(ctx context.Context, a ir.AspectAssertion) error {
	if a.Pointcut.Axiom == nil || a.Aspect.Expression == nil {
		return fmt.Errorf("add aspect assertion: missing axiom or aspect")
	}
	axiomID, err := ir.AxiomID(a.Pointcut.Axiom)
	if err != nil {
		return fmt.Errorf("add aspect assertion: %w", err)
	}
	aspectID, aspectIRI, body, err := marshalAspect(a.Aspect)
	if err != nil {
		return fmt.Errorf("add aspect assertion: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := nextSeq(ctx, tx, "aspect_assertions")
		if err != nil {
			return fmt.Errorf("add aspect assertion: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO aspect_assertions (axiom_id, aspect_id, aspect_iri, aspect, seq)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(axiom_id, aspect_id) DO NOTHING
		`, axiomID, aspectID, aspectIRI, body, seq)
		if err != nil {
			return fmt.Errorf("add aspect assertion: %w", err)
		}
		return nil
	})
}

// nextSeq returns the next insertion sequence number for table.
func nextSeq(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var seq int64
	// table is one of two constants, never user input.
	err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM "+table).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
