package manager

import (
	"fmt"

	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/store"
	"github.com/roach88/stash/internal/value"
)

// Payload is an unordered mapping from attribute name to value, supplied
// by the caller. Keys that are not attributes of the target entity are
// silently ignored; they are no-ops, not errors.
type Payload map[string]value.Value

// setters is the typed setter dispatch table: one coercion function per
// attribute kind. Replaces the reflection-style key/value application of
// a dynamic store with explicit per-kind dispatch.
//
// Null is accepted for every kind (clears the attribute). Int widens to
// float attributes; no other cross-kind coercion is performed.
var setters = map[schema.Kind]func(value.Value) (value.Value, error){
	schema.KindString: func(v value.Value) (value.Value, error) {
		switch val := v.(type) {
		case value.Null:
			return val, nil
		case value.String:
			// Re-normalize so lookups compare consistently no matter
			// how the caller constructed the value.
			return value.NewString(string(val)), nil
		default:
			return nil, fmt.Errorf("want string, got %T", v)
		}
	},
	schema.KindInt: func(v value.Value) (value.Value, error) {
		switch val := v.(type) {
		case value.Null, value.Int:
			return val, nil
		default:
			return nil, fmt.Errorf("want int, got %T", v)
		}
	},
	schema.KindFloat: func(v value.Value) (value.Value, error) {
		switch val := v.(type) {
		case value.Null, value.Float:
			return val, nil
		case value.Int:
			return value.Float(val), nil
		default:
			return nil, fmt.Errorf("want float, got %T", v)
		}
	},
	schema.KindBool: func(v value.Value) (value.Value, error) {
		switch val := v.(type) {
		case value.Null, value.Bool:
			return val, nil
		default:
			return nil, fmt.Errorf("want bool, got %T", v)
		}
	},
}

// applyPayload maps a payload onto a record: for every attribute declared
// in the entity's schema, if the payload names it, the attribute is
// overwritten with the coerced value. Attributes not named in the payload
// are left untouched. Returns the number of attributes applied.
func applyPayload(e *schema.Entity, rec *store.Record, payload Payload) (int, error) {
	applied := 0
	for _, attr := range e.Attributes {
		v, ok := payload[attr.Name]
		if !ok {
			continue
		}
		set, ok := setters[attr.Kind]
		if !ok {
			return applied, fmt.Errorf("attribute %q: unknown kind %q", attr.Name, attr.Kind)
		}
		coerced, err := set(v)
		if err != nil {
			return applied, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		rec.Set(attr.Name, coerced)
		applied++
	}
	return applied, nil
}
