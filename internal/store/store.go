package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/aspectswrl/internal/builtin"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - Initial schema
const currentSchemaVersion = 1

const metaOntologyIRI = "ontology_iri"

// ErrNoOntologyIRI is returned by Open when neither the caller nor the
// database supplies an ontology IRI.
var ErrNoOntologyIRI = errors.New("store has no ontology IRI")

// Store is a SQLite-backed ontology.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	iri string
}

var (
	_ builtin.Ontology      = (*Store)(nil)
	_ builtin.AspectManager = (*Store)(nil)
)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// iri is the ontology IRI. On a new database it is recorded; on an existing
// one it must match the recorded IRI, or be empty to adopt it.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path, iri string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	resolved, err := bindOntologyIRI(db, iri)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, iri: resolved}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// IRI returns the ontology IRI.
func (s *Store) IRI() string {
	return s.iri
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	// Version 1 is the initial schema, created by schema.sql.
	// Future migrations go here, one block per version.

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// bindOntologyIRI records iri on first use and checks it afterwards.
func bindOntologyIRI(db *sql.DB, iri string) (string, error) {
	var stored string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaOntologyIRI).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if iri == "" {
			return "", ErrNoOntologyIRI
		}
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, metaOntologyIRI, iri); err != nil {
			return "", fmt.Errorf("record ontology IRI: %w", err)
		}
		return iri, nil
	case err != nil:
		return "", fmt.Errorf("read ontology IRI: %w", err)
	}

	if iri != "" && iri != stored {
		return "", fmt.Errorf("ontology IRI mismatch: database has %q, requested %q", stored, iri)
	}
	return stored, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
