package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// Insert adds a new record to its entity collection within the session.
// The write is pending until Commit. Duplicate content is permitted; only
// the record id is unique.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	e, ok := s.schema.Entity(rec.Entity)
	if !ok {
		return fmt.Errorf("insert: unknown entity %q", rec.Entity)
	}

	cols := schema.Columns(e)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	args, err := recordArgs(e, rec)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.Name, strings.Join(cols, ", "), placeholders)
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	s.writes++
	return nil
}

// Update writes the record's current attribute values back to its row
// within the session. The write is pending until Commit.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	e, ok := s.schema.Entity(rec.Entity)
	if !ok {
		return fmt.Errorf("update: unknown entity %q", rec.Entity)
	}

	sets := make([]string, 0, len(e.Attributes))
	args := make([]any, 0, len(e.Attributes)+1)
	for _, a := range e.Attributes {
		sets = append(sets, fmt.Sprintf("%s = ?", a.Name))
		param, err := value.Param(rec.Get(a.Name))
		if err != nil {
			return fmt.Errorf("update: attribute %q: %w", a.Name, err)
		}
		args = append(args, param)
	}
	args = append(args, rec.ID)

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", e.Name, strings.Join(sets, ", "))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	s.writes++
	return nil
}

// Delete removes the record from its entity collection within the session.
// The removal is pending until Commit; the record must not be used after.
func (s *Store) Delete(ctx context.Context, rec *Record) error {
	e, ok := s.schema.Entity(rec.Entity)
	if !ok {
		return fmt.Errorf("delete: unknown entity %q", rec.Entity)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", e.Name)
	if _, err := tx.ExecContext(ctx, stmt, rec.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	s.writes++
	return nil
}

// recordArgs builds the parameter list for an INSERT: the record id
// followed by attribute values in schema declaration order.
func recordArgs(e *schema.Entity, rec *Record) ([]any, error) {
	args := make([]any, 0, len(e.Attributes)+1)
	args = append(args, rec.ID)
	for _, a := range e.Attributes {
		param, err := value.Param(rec.Get(a.Name))
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		args = append(args, param)
	}
	return args, nil
}
