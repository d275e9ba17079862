package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/stash/internal/schema"
)

// Store is the entity store handle: a single mutable session over a
// SQLite-backed container described by a schema.
//
// Mutations (Insert, Update, Delete) execute inside a session transaction
// that is begun lazily on the first write and committed by Commit. Queries
// issued while the transaction is open read through it, so the session
// observes its own pending writes. There is no internal locking; callers
// serialize access externally.
type Store struct {
	db     *sql.DB
	schema *schema.Schema

	tx     *sql.Tx // open while uncommitted changes exist
	writes int     // mutations since the last commit
}

// Open creates or opens the SQLite container at the given path and
// materializes the schema's entity tables.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, s *schema.Schema) (*Store, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// The single connection also keeps session queries and the session
	// transaction on the same underlying handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db, s); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, schema: s}, nil
}

// Close discards any uncommitted session changes and closes the database.
func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
		s.writes = 0
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schema returns the schema this container was opened with.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// Pending reports whether the session holds uncommitted changes.
func (s *Store) Pending() bool {
	return s.writes > 0
}

// Commit atomically commits all pending session changes to the backing
// store. A no-op when nothing is pending. After a failed commit the
// transaction is gone either way; the error must be surfaced to the caller
// so persisted and in-memory state never diverge silently.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	s.writes = 0

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// begin lazily opens the session transaction.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// querier returns the session transaction when open, else the database.
// Reading through the open transaction gives read-your-writes semantics.
func (s *Store) querier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
} {
	if s.tx != nil {
		return s.tx
	}
	return s.db
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

// applySchema creates the entity tables if they don't exist.
// This function is idempotent.
func applySchema(db *sql.DB, s *schema.Schema) error {
	for _, stmt := range schema.CreateStatements(s) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	return nil
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
