package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileSchema parses a CUE value into a Schema.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`schema: tasks: { entity: Task: { title: string } }`)
//	s, err := CompileSchema("tasks", v.LookupPath(cue.ParsePath("schema.tasks")))
//
// Attribute types are declared as CUE types:
//
//	entity: Task: {
//	    title:    string
//	    done:     bool
//	    priority: int
//	    weight:   float
//	}
func CompileSchema(name string, v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{Name: name}

	entityVal := v.LookupPath(cue.ParsePath("entity"))
	if !entityVal.Exists() {
		return nil, &CompileError{
			Field:   "entity",
			Message: "at least one entity is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := entityVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		entity, err := compileEntity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		s.Entities = append(s.Entities, *entity)
	}

	if len(s.Entities) == 0 {
		return nil, &CompileError{
			Field:   "entity",
			Message: "at least one entity is required",
			Pos:     v.Pos(),
		}
	}

	if err := s.Validate(); err != nil {
		return nil, &CompileError{
			Field:   "schema",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	return s, nil
}

// compileEntity parses one entity struct into an Entity.
// Each field declares an attribute; the field's CUE type determines the Kind.
func compileEntity(name string, v cue.Value) (*Entity, error) {
	entity := &Entity{Name: name}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		kind, err := extractKind(iter.Value())
		if err != nil {
			return nil, err
		}
		entity.Attributes = append(entity.Attributes, Attribute{
			Name: iter.Label(),
			Kind: kind,
		})
	}

	return entity, nil
}

// extractKind maps a CUE type to an attribute Kind.
func extractKind(v cue.Value) (Kind, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return KindString, nil
	case cue.IntKind:
		return KindInt, nil
	case cue.BoolKind:
		return KindBool, nil
	case cue.FloatKind, cue.NumberKind:
		return KindFloat, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported attribute type: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
