package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/stash/internal/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Name: "tasks",
		Entities: []schema.Entity{
			{
				Name: "Task",
				Attributes: []schema.Attribute{
					{Name: "title", Kind: schema.KindString},
					{Name: "done", Kind: schema.KindBool},
					{Name: "priority", Kind: schema.KindInt},
					{Name: "weight", Kind: schema.KindFloat},
				},
			},
			{
				Name: "Tag",
				Attributes: []schema.Attribute{
					{Name: "name", Kind: schema.KindString},
				},
			},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testSchema())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, testSchema())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_CreatesEntityTables(t *testing.T) {
	s := openTestStore(t)

	tables := []string{"Task", "Tag"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path, testSchema())
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db", testSchema())
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_InvalidSchema(t *testing.T) {
	bad := &schema.Schema{Name: "x", Entities: []schema.Entity{{Name: "no attrs"}}}
	if _, err := Open(filepath.Join(t.TempDir(), "t.db"), bad); err == nil {
		t.Error("expected error for invalid schema, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}
