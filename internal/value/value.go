package value

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing attribute value types.
// Only Null, String, Int, Float, and Bool implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the SQL compiler and the setter dispatch table.
type Value interface {
	attrValue() // Sealed - only types in this package implement it
}

// Null represents an unset attribute value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) attrValue() {}

// String represents a text attribute value.
// Stored NFC-normalized so that predicate comparisons are stable across
// different Unicode encodings of the same text.
type String string

func (String) attrValue() {}

// Int represents an integer attribute value. Always int64.
type Int int64

func (Int) attrValue() {}

// Float represents a floating-point attribute value. Always float64.
type Float float64

func (Float) attrValue() {}

// Bool represents a boolean attribute value.
type Bool bool

func (Bool) attrValue() {}

// NewString creates a String value, normalizing to NFC.
func NewString(s string) String {
	return String(norm.NFC.String(s))
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewFloat creates a Float value.
func NewFloat(f float64) Float {
	return Float(f)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// Param converts a Value to a Go native type for use as a SQL parameter.
// Strings are NFC-normalized so that stored values and query parameters
// compare consistently regardless of how the caller encoded them.
func Param(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Null:
		return nil, nil
	case String:
		return norm.NFC.String(string(val)), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// Native converts a Value to the corresponding Go native type.
// Null converts to nil. Used for JSON output and harness snapshots.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// FromAny converts a Go native value to a Value.
// Accepts the types produced by YAML and JSON decoding (string, bool,
// int/int64, float64) plus nil. Whole floats are NOT narrowed to Int -
// the caller's type is preserved.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case string:
		return NewString(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	default:
		return nil, fmt.Errorf("unsupported native type: %T", v)
	}
}

// Format renders a Value as a human-readable string for text output.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "<null>"
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal reports whether two Values are the same type with the same content.
// Strings are compared after NFC normalization.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && norm.NFC.String(string(av)) == norm.NFC.String(string(bv))
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	default:
		return false
	}
}
