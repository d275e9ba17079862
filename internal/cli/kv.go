package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// parsePairs converts repeated key=value flags into typed attribute
// values, using the entity's attribute kinds to drive parsing. The
// literal "null" clears an attribute; quote it ("\"null\"") to store the
// string.
func parsePairs(e *schema.Entity, pairs []string) (map[string]value.Value, error) {
	values := make(map[string]value.Value, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed pair %q: want key=value", pair)
		}

		attr, ok := e.Attribute(key)
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q for entity %s", key, e.Name)
		}

		v, err := parseTyped(attr.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}

// parseTyped parses one raw flag value according to the attribute kind.
func parseTyped(kind schema.Kind, raw string) (value.Value, error) {
	if raw == "null" {
		return value.Null{}, nil
	}

	switch kind {
	case schema.KindString:
		// Unwrap quotes so the literal string "null" stays reachable
		if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
			raw = raw[1 : len(raw)-1]
		}
		return value.NewString(raw), nil
	case schema.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return value.NewInt(n), nil
	case schema.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return value.NewFloat(f), nil
	case schema.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}
		return value.NewBool(b), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

// wherePredicate builds an AND of equality comparisons from --where
// pairs. Pairs are combined in flag order. Nil when no pairs were given.
func wherePredicate(e *schema.Entity, pairs []string) (query.Predicate, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	preds := make([]query.Predicate, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed pair %q: want key=value", pair)
		}
		attr, ok := e.Attribute(key)
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q for entity %s", key, e.Name)
		}
		v, err := parseTyped(attr.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		preds = append(preds, query.Eq(key, v))
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return query.AllOf(preds...), nil
}

// parseSort converts --sort values of the form "attr" or "attr:desc"
// into a sort specification.
func parseSort(e *schema.Entity, specs []string) (query.Sort, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	sort := make(query.Sort, 0, len(specs))
	for _, spec := range specs {
		attr, dir, hasDir := strings.Cut(spec, ":")
		if _, ok := e.Attribute(attr); !ok {
			return nil, fmt.Errorf("unknown sort attribute %q for entity %s", attr, e.Name)
		}
		switch {
		case !hasDir || dir == "asc":
			sort = append(sort, query.Asc(attr))
		case dir == "desc":
			sort = append(sort, query.Desc(attr))
		default:
			return nil, fmt.Errorf("invalid sort direction %q: want asc or desc", dir)
		}
	}
	return sort, nil
}
