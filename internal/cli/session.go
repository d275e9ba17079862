package cli

import (
	"fmt"
	"log/slog"

	"github.com/roach88/stash/internal/manager"
	"github.com/roach88/stash/internal/schema"
)

// openManager loads the schema catalog and opens the persistence facade
// for the configured schema. The caller owns the returned manager.
func openManager(opts *RootOptions) (*manager.Manager, *schema.Schema, error) {
	if opts.Schema == "" {
		return nil, nil, NewExitError(ExitCommandError, "no schema selected: pass --schema or set STASH_SCHEMA")
	}

	slog.Debug("loading schema catalog", "dir", opts.Schemas)
	catalog, err := schema.LoadDir(opts.Schemas)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load schemas", err)
	}

	sch, ok := catalog.Schema(opts.Schema)
	if !ok {
		return nil, nil, NewExitError(ExitCommandError,
			fmt.Sprintf("schema %q not found; known schemas: %v", opts.Schema, catalog.Names()))
	}

	m := manager.New(manager.Options{
		Source: manager.SchemaSourceFunc(func() (string, bool) {
			return opts.Schema, true
		}),
		Catalog: catalog,
		Dir:     opts.Dir,
	})
	return m, sch, nil
}

// entityOf resolves an entity name against the schema, with a helpful
// error listing the names that do exist.
func entityOf(sch *schema.Schema, name string) (*schema.Entity, error) {
	e, ok := sch.Entity(name)
	if !ok {
		names := make([]string, len(sch.Entities))
		for i := range sch.Entities {
			names[i] = sch.Entities[i].Name
		}
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("entity %q not in schema %q; known entities: %v", name, sch.Name, names))
	}
	return e, nil
}
