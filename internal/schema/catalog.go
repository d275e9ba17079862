package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Catalog holds the compiled schemas known to the host application.
// The schema source names one of them when the container is resolved.
type Catalog struct {
	schemas map[string]*Schema
}

// NewCatalog creates a catalog from compiled schemas.
func NewCatalog(schemas ...*Schema) *Catalog {
	c := &Catalog{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		c.schemas[s.Name] = s
	}
	return c
}

// Schema returns the schema with the given name, or false if absent.
func (c *Catalog) Schema(name string) (*Schema, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Names returns the schema names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir loads and compiles all CUE schema files in a directory.
// Schemas are declared under the top-level "schema" struct:
//
//	schema: tasks: {
//	    entity: Task: { title: string, done: bool }
//	}
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("schema directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}
	if len(cueFiles) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded")
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return CompileCatalog(value)
}

// CompileCatalog extracts all schemas under the top-level "schema" struct
// of a CUE value.
func CompileCatalog(v cue.Value) (*Catalog, error) {
	schemasVal := v.LookupPath(cue.ParsePath("schema"))
	if !schemasVal.Exists() {
		return nil, fmt.Errorf("no schemas found: missing top-level \"schema\" struct")
	}

	iter, err := schemasVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	catalog := &Catalog{schemas: make(map[string]*Schema)}
	for iter.Next() {
		s, err := CompileSchema(iter.Label(), iter.Value())
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", iter.Label(), err)
		}
		catalog.schemas[s.Name] = s
	}

	if len(catalog.schemas) == 0 {
		return nil, fmt.Errorf("no schemas found under \"schema\" struct")
	}

	return catalog, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
