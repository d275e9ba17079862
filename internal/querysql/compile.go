// Package querysql compiles the predicate/sort IR to parameterized SQL
// for SQLite.
//
// Every query includes an ORDER BY with a deterministic id tiebreaker so
// result order is stable across runs. Values are always parameterized,
// never interpolated; only schema-validated identifiers reach the SQL text.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// Compile converts a predicate and sort specification into a SELECT
// statement over the entity's collection. Returns (sql, params, error).
//
// The column list is "id" plus the entity's attributes in declaration
// order. A nil predicate matches all records; a nil sort yields default
// (id) order.
func Compile(e *schema.Entity, pred query.Predicate, sort query.Sort) (string, []any, error) {
	if err := query.Validate(pred, e); err != nil {
		return "", nil, fmt.Errorf("validate predicate: %w", err)
	}
	if err := query.ValidateSort(sort, e); err != nil {
		return "", nil, fmt.Errorf("validate sort: %w", err)
	}

	selectClause := strings.Join(schema.Columns(e), ", ")

	var whereClause string
	var params []any
	if pred != nil {
		predSQL, predParams, err := compilePredicate(pred)
		if err != nil {
			return "", nil, fmt.Errorf("compile predicate: %w", err)
		}
		whereClause = " WHERE " + predSQL
		params = predParams
	}

	orderByClause := " ORDER BY " + orderKey(e, sort)

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectClause,
		e.Name,
		whereClause,
		orderByClause)

	return sql, params, nil
}

// orderKey builds the ORDER BY clause: the caller's sort keys in listed
// order, then the id tiebreaker. COLLATE BINARY keeps text ordering
// deterministic across SQLite versions.
func orderKey(e *schema.Entity, sort query.Sort) string {
	var parts []string
	for _, key := range sort {
		dir := "ASC"
		if key.Descending {
			dir = "DESC"
		}
		if attr, ok := e.Attribute(key.Attr); ok && attr.Kind == schema.KindString {
			parts = append(parts, fmt.Sprintf("%s COLLATE BINARY %s", key.Attr, dir))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", key.Attr, dir))
		}
	}
	parts = append(parts, "id ASC COLLATE BINARY")
	return strings.Join(parts, ", ")
}

// compilePredicate compiles a predicate to a SQL WHERE fragment.
// Returns (sql, params, error).
func compilePredicate(p query.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case query.Compare:
		return compileCompare(pred)
	case *query.Compare:
		return compileCompare(*pred)
	case query.And:
		return compileList(pred.Predicates, " AND ", "1 = 1")
	case *query.And:
		return compileList(pred.Predicates, " AND ", "1 = 1")
	case query.Or:
		return compileList(pred.Predicates, " OR ", "1 = 0")
	case *query.Or:
		return compileList(pred.Predicates, " OR ", "1 = 0")
	case query.Not:
		return compileNot(pred)
	case *query.Not:
		return compileNot(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileCompare compiles a Compare predicate to "attr <op> ?".
// Null comparisons compile to IS NULL / IS NOT NULL with no parameter.
func compileCompare(c query.Compare) (string, []any, error) {
	if _, isNull := c.Value.(value.Null); isNull || c.Value == nil {
		switch c.Op {
		case query.OpEq:
			return fmt.Sprintf("%s IS NULL", c.Attr), nil, nil
		case query.OpNe:
			return fmt.Sprintf("%s IS NOT NULL", c.Attr), nil, nil
		default:
			return "", nil, fmt.Errorf("attribute %q: null only supports = and !=", c.Attr)
		}
	}

	param, err := value.Param(c.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	return fmt.Sprintf("%s %s ?", c.Attr, c.Op), []any{param}, nil
}

// compileList compiles a conjunction or disjunction. The empty slice
// compiles to the identity of the connective (true for AND, false for OR).
func compileList(preds []query.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range preds {
		sql, params, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	if len(sqlParts) == 1 {
		return sqlParts[0], allParams, nil
	}
	return "(" + strings.Join(sqlParts, sep) + ")", allParams, nil
}

func compileNot(n query.Not) (string, []any, error) {
	inner, params, err := compilePredicate(n.Predicate)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + inner + ")", params, nil
}
