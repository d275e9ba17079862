// Package query defines the predicate and sort IR used by fetch and
// dedupe-check operations.
//
// Predicate is a sealed interface: only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the SQL compiler.
package query

import (
	"github.com/roach88/stash/internal/value"
)

// Predicate represents a boolean filter over record attributes.
//
// Predicate types:
//   - Compare: attribute <op> literal value
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
//   - Not: negation
//
// A nil Predicate means "match all".
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op identifies a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Compare represents an attribute-compared-to-literal predicate.
//
// Semantics:
//
//	<attr> <op> <value>
//
// Comparing against Null is only meaningful with OpEq and OpNe, which
// compile to IS NULL / IS NOT NULL.
type Compare struct {
	Attr  string
	Op    Op
	Value value.Value
}

func (Compare) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty Predicates slice means "always true" (vacuous truth).
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (at least one must be true).
// An empty Predicates slice means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Sort is an ordered sequence of sort keys, applied in listed order.
// A nil Sort means default order (record id, which for uuid-v7 ids is
// insertion order).
type Sort []Key

// Key is one (attribute, direction) pair of a sort specification.
type Key struct {
	Attr       string
	Descending bool
}

// Eq builds an equality comparison. Shorthand for ergonomic construction.
func Eq(attr string, v value.Value) *Compare {
	return &Compare{Attr: attr, Op: OpEq, Value: v}
}

// AllOf builds a conjunction of predicates.
func AllOf(preds ...Predicate) *And {
	return &And{Predicates: preds}
}

// AnyOf builds a disjunction of predicates.
func AnyOf(preds ...Predicate) *Or {
	return &Or{Predicates: preds}
}

// Asc builds an ascending sort key.
func Asc(attr string) Key {
	return Key{Attr: attr}
}

// Desc builds a descending sort key.
func Desc(attr string) Key {
	return Key{Attr: attr, Descending: true}
}
