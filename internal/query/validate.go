package query

import (
	"fmt"

	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// Validate checks a predicate against an entity schema: every referenced
// attribute must exist and every comparison value must match the attribute's
// declared kind (Null is allowed for any attribute, but only with = or !=).
// A nil predicate is valid (match all).
func Validate(p Predicate, e *schema.Entity) error {
	if p == nil {
		return nil
	}

	switch pred := p.(type) {
	case Compare:
		return validateCompare(pred, e)
	case *Compare:
		return validateCompare(*pred, e)
	case And:
		return validateList(pred.Predicates, e)
	case *And:
		return validateList(pred.Predicates, e)
	case Or:
		return validateList(pred.Predicates, e)
	case *Or:
		return validateList(pred.Predicates, e)
	case Not:
		return Validate(pred.Predicate, e)
	case *Not:
		return Validate(pred.Predicate, e)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func validateList(preds []Predicate, e *schema.Entity) error {
	for _, p := range preds {
		if err := Validate(p, e); err != nil {
			return err
		}
	}
	return nil
}

func validateCompare(c Compare, e *schema.Entity) error {
	attr, ok := e.Attribute(c.Attr)
	if !ok {
		return fmt.Errorf("entity %q has no attribute %q", e.Name, c.Attr)
	}

	switch c.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
	default:
		return fmt.Errorf("unsupported comparison operator %q", c.Op)
	}

	if _, isNull := c.Value.(value.Null); isNull || c.Value == nil {
		if c.Op != OpEq && c.Op != OpNe {
			return fmt.Errorf("attribute %q: null only supports = and !=", c.Attr)
		}
		return nil
	}

	if !kindMatches(attr.Kind, c.Value) {
		return fmt.Errorf("attribute %q: value %T does not match kind %q", c.Attr, c.Value, attr.Kind)
	}
	return nil
}

// kindMatches reports whether a comparison value is usable against an
// attribute of the given kind. Int values compare against float attributes
// (widening), but not the reverse.
func kindMatches(k schema.Kind, v value.Value) bool {
	switch v.(type) {
	case value.String:
		return k == schema.KindString
	case value.Int:
		return k == schema.KindInt || k == schema.KindFloat
	case value.Float:
		return k == schema.KindFloat
	case value.Bool:
		return k == schema.KindBool
	default:
		return false
	}
}

// ValidateSort checks a sort specification against an entity schema.
// A nil sort is valid (default order).
func ValidateSort(s Sort, e *schema.Entity) error {
	for _, key := range s {
		if _, ok := e.Attribute(key.Attr); !ok {
			return fmt.Errorf("entity %q has no attribute %q", e.Name, key.Attr)
		}
	}
	return nil
}
