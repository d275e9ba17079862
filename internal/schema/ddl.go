package schema

import (
	"fmt"
	"strings"
)

// columnType maps an attribute Kind to a SQLite column type.
func columnType(k Kind) string {
	switch k {
	case KindString:
		return "TEXT"
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBool:
		return "BOOLEAN"
	default:
		// Validate rejects unknown kinds before DDL generation.
		return "TEXT"
	}
}

// CreateStatements returns the CREATE TABLE statements for every entity
// collection in the schema, in declaration order. Statements are idempotent
// (IF NOT EXISTS) so reopening an existing container is safe.
//
// Every table carries an "id" TEXT primary key holding the record identifier;
// attribute columns are nullable and follow in declaration order.
func CreateStatements(s *Schema) []string {
	stmts := make([]string, 0, len(s.Entities))
	for _, e := range s.Entities {
		var b strings.Builder
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", e.Name)
		b.WriteString("\tid TEXT PRIMARY KEY")
		for _, a := range e.Attributes {
			fmt.Fprintf(&b, ",\n\t%s %s", a.Name, columnType(a.Kind))
		}
		b.WriteString("\n)")
		stmts = append(stmts, b.String())
	}
	return stmts
}

// Columns returns the column list for an entity: "id" followed by the
// attribute names in declaration order. Used for SELECT and INSERT column
// lists so row shape is stable.
func Columns(e *Entity) []string {
	cols := make([]string, 0, len(e.Attributes)+1)
	cols = append(cols, "id")
	for _, a := range e.Attributes {
		cols = append(cols, a.Name)
	}
	return cols
}
