package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/stash/internal/store"
	"github.com/roach88/stash/internal/value"
)

// AssertionError describes one failed assertion with enough context to
// debug it without re-running the scenario.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Entity   string // Collection the assertion targeted
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Entity)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertions checks every assertion against the final collection
// state, reading through the open session so unsaved writes are visible.
// Failures accumulate in the result; a broken assertion (bad where clause,
// unknown entity) is itself recorded as a failure rather than aborting.
func (h *harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) {
	for i, a := range assertions {
		if err := h.evaluate(ctx, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
}

func (h *harness) evaluate(ctx context.Context, a Assertion) error {
	pred, err := wherePredicate(a.Where)
	if err != nil {
		return err
	}
	records, err := h.manager.Fetch(ctx, a.Entity, pred, nil)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", a.Entity, err)
	}

	switch a.Type {
	case AssertCount:
		return assertCount(records, a)
	case AssertContains:
		return assertContains(records, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCount checks that exactly a.Count records matched.
func assertCount(records []*store.Record, a Assertion) error {
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Entity:   a.Entity,
			Expected: fmt.Sprintf("%d matching records", a.Count),
			Actual:   fmt.Sprintf("%d matching records", len(records)),
		}
	}
	return nil
}

// assertContains checks that at least one matched record carries every
// expected attribute value.
func assertContains(records []*store.Record, a Assertion) error {
	expected := make(map[string]value.Value, len(a.Expect))
	for key, raw := range a.Expect {
		v, err := value.FromAny(raw)
		if err != nil {
			return fmt.Errorf("expect %q: %w", key, err)
		}
		expected[key] = v
	}

	for _, rec := range records {
		if recordCarries(rec, expected) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertContains,
		Entity:   a.Entity,
		Expected: fmt.Sprintf("a record with %v", a.Expect),
		Actual:   fmt.Sprintf("no match among %d records", len(records)),
	}
}

// recordCarries reports whether the record holds every expected value.
// Int expectations match Float attributes after widening, mirroring the
// payload setter semantics.
func recordCarries(rec *store.Record, expected map[string]value.Value) bool {
	for key, want := range expected {
		got := rec.Get(key)
		if value.Equal(got, want) {
			continue
		}
		if iv, ok := want.(value.Int); ok {
			if value.Equal(got, value.Float(iv)) {
				continue
			}
		}
		return false
	}
	return true
}
