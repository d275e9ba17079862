// Package testutil provides shared test fixtures: a canonical schema
// catalog and schema source implementations with fixed behavior.
package testutil

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/stash/internal/schema"
)

// TasksCUE is the canonical test schema in CUE source form.
// It exercises all four attribute kinds and two entity collections.
const TasksCUE = `
schema: tasks: {
	entity: Task: {
		title:    string
		done:     bool
		priority: int
		weight:   float
	}
	entity: Tag: {
		name: string
	}
}
`

// NewCatalog compiles TasksCUE into a catalog. Fails the test on error.
func NewCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	ctx := cuecontext.New()
	v := ctx.CompileString(TasksCUE)
	if err := v.Err(); err != nil {
		t.Fatalf("compile test schema: %v", err)
	}
	catalog, err := schema.CompileCatalog(v)
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return catalog
}

// FixedSource is a schema source that always returns the same name.
type FixedSource struct {
	Name string
}

// SchemaName returns the fixed schema name.
func (s FixedSource) SchemaName() (string, bool) {
	return s.Name, true
}

// AbsentSource is a schema source that never supplies a schema name,
// modeling a host application whose configuration has gone away.
type AbsentSource struct{}

// SchemaName always reports that no schema is available.
func (AbsentSource) SchemaName() (string, bool) {
	return "", false
}
