package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/querysql"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// Query returns all records of the entity collection matching the predicate,
// ordered per the sort specification. A nil predicate matches all records;
// a nil sort yields default (id) order. The result is fully materialized.
//
// Queries issued while the session transaction is open read through it, so
// pending inserts, updates, and deletes are visible.
//
// Returns an empty slice (not nil) when no records match.
func (s *Store) Query(ctx context.Context, entity string, pred query.Predicate, sort query.Sort) ([]*Record, error) {
	e, ok := s.schema.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("query: unknown entity %q", entity)
	}

	stmt, params, err := querysql.Compile(e, pred, sort)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	rows, err := s.querier().QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows, e)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", entity, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", entity, err)
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []*Record{}
	}

	return records, nil
}

// scanRecord reads one row into a Record. The column order is "id" followed
// by the entity's attributes in declaration order, matching the compiled
// SELECT list.
func scanRecord(rows *sql.Rows, e *schema.Entity) (*Record, error) {
	var id string
	dest := make([]any, 0, len(e.Attributes)+1)
	dest = append(dest, &id)

	holders := make([]any, len(e.Attributes))
	for i, a := range e.Attributes {
		switch a.Kind {
		case schema.KindString:
			holders[i] = &sql.NullString{}
		case schema.KindInt:
			holders[i] = &sql.NullInt64{}
		case schema.KindFloat:
			holders[i] = &sql.NullFloat64{}
		case schema.KindBool:
			holders[i] = &sql.NullBool{}
		default:
			return nil, fmt.Errorf("attribute %q: unknown kind %q", a.Name, a.Kind)
		}
		dest = append(dest, holders[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	rec := &Record{
		ID:     id,
		Entity: e.Name,
		Attrs:  make(map[string]value.Value, len(e.Attributes)),
	}
	for i, a := range e.Attributes {
		rec.Attrs[a.Name] = holderValue(holders[i])
	}

	return rec, nil
}

// holderValue converts a scanned sql.Null* holder to a Value.
func holderValue(h any) value.Value {
	switch v := h.(type) {
	case *sql.NullString:
		if v.Valid {
			return value.String(v.String)
		}
	case *sql.NullInt64:
		if v.Valid {
			return value.Int(v.Int64)
		}
	case *sql.NullFloat64:
		if v.Valid {
			return value.Float(v.Float64)
		}
	case *sql.NullBool:
		if v.Valid {
			return value.Bool(v.Bool)
		}
	}
	return value.Null{}
}
