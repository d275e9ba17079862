package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/roach88/stash/internal/manager"
	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// Result captures the outcome of a scenario run.
type Result struct {
	// Scenario is the name of the scenario that ran.
	Scenario string

	// Errors holds assertion and expectation failures. Mechanical
	// failures (bad YAML, unknown entity, query errors) abort the run
	// instead and come back as the error from Run.
	Errors []string

	// Collections holds the final-state snapshots the scenario asked
	// for, in the order listed under snapshot.
	Collections []CollectionSnapshot
}

// NewResult creates an empty result for the named scenario.
func NewResult(name string) *Result {
	return &Result{Scenario: name}
}

// AddError records an assertion failure.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Passed reports whether the scenario ran without assertion failures.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// harness drives one scenario against a fresh container.
type harness struct {
	manager *manager.Manager
	schema  *schema.Schema
	logger  *slog.Logger
}

// Run executes a scenario against a fresh container and returns the
// result. The container lives in a temporary directory removed when the
// run completes, so scenarios are fully isolated from each other.
//
// Execution flow:
//  1. Open a fresh container for the scenario's schema
//  2. Execute setup inserts, then save once
//  3. Execute flow steps, saving where the step asks
//  4. Evaluate assertions against the final collection state
func Run(scenario *Scenario, catalog *schema.Catalog) (*Result, error) {
	sch, ok := catalog.Schema(scenario.Schema)
	if !ok {
		return nil, fmt.Errorf("scenario %q: schema %q not in catalog", scenario.Name, scenario.Schema)
	}

	dir, err := os.MkdirTemp("", "stash-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	m := manager.New(manager.Options{
		Source: manager.SchemaSourceFunc(func() (string, bool) {
			return scenario.Schema, true
		}),
		Catalog: catalog,
		Dir:     dir,
	})
	defer m.Close()

	h := &harness{
		manager: m,
		schema:  sch,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult(scenario.Name)

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	h.evaluateAssertions(ctx, scenario.Assertions, result)

	if len(scenario.Snapshot) > 0 {
		collections, err := h.captureSnapshot(ctx, scenario.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to capture snapshot: %w", err)
		}
		result.Collections = collections
	}

	return result, nil
}

// executeSetup inserts the setup records, then saves once.
func (h *harness) executeSetup(ctx context.Context, setup []InsertStep) error {
	for i, step := range setup {
		payload, err := toPayload(step.Attrs)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		if _, err := h.manager.Insert(ctx, step.Entity, payload, false); err != nil {
			return fmt.Errorf("setup step %d: insert %s: %w", i, step.Entity, err)
		}
		h.logger.Info("setup record inserted", "step", i, "entity", step.Entity)
	}
	if len(setup) > 0 {
		if err := h.manager.Save(ctx); err != nil {
			return fmt.Errorf("setup save: %w", err)
		}
	}
	return nil
}

// executeFlow runs the main operation sequence. Expectation mismatches
// (expect_inserted) go into the result; mechanical failures abort.
func (h *harness) executeFlow(ctx context.Context, flow []OpStep, result *Result) error {
	for i, step := range flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return err
		}
		h.logger.Info("flow step completed", "step", i, "op", step.Op, "entity", step.Entity)
	}
	return nil
}

func (h *harness) executeStep(ctx context.Context, i int, step OpStep, result *Result) error {
	payload, err := toPayload(step.Attrs)
	if err != nil {
		return fmt.Errorf("flow step %d: %w", i, err)
	}
	pred, err := wherePredicate(step.Where)
	if err != nil {
		return fmt.Errorf("flow step %d: %w", i, err)
	}

	switch step.Op {
	case OpInsert:
		if _, err := h.manager.Insert(ctx, step.Entity, payload, step.Save); err != nil {
			return fmt.Errorf("flow step %d: insert %s: %w", i, step.Entity, err)
		}

	case OpInsertIfAbsent:
		rec, err := h.manager.InsertIfAbsent(ctx, step.Entity, pred, payload, step.Save)
		if err != nil {
			return fmt.Errorf("flow step %d: insert_if_absent %s: %w", i, step.Entity, err)
		}
		if step.ExpectInserted != nil {
			inserted := rec != nil
			if inserted != *step.ExpectInserted {
				result.AddError(fmt.Sprintf(
					"flow step %d: insert_if_absent %s: expected inserted=%t, got inserted=%t",
					i, step.Entity, *step.ExpectInserted, inserted))
			}
		}

	case OpUpdate:
		records, err := h.manager.Fetch(ctx, step.Entity, pred, nil)
		if err != nil {
			return fmt.Errorf("flow step %d: update %s: %w", i, step.Entity, err)
		}
		for _, rec := range records {
			if _, err := h.manager.Update(ctx, rec, payload, false); err != nil {
				return fmt.Errorf("flow step %d: update %s: %w", i, step.Entity, err)
			}
		}
		if step.Save {
			if err := h.manager.Save(ctx); err != nil {
				return fmt.Errorf("flow step %d: save: %w", i, err)
			}
		}

	case OpDelete:
		records, err := h.manager.Fetch(ctx, step.Entity, pred, nil)
		if err != nil {
			return fmt.Errorf("flow step %d: delete %s: %w", i, step.Entity, err)
		}
		for _, rec := range records {
			if err := h.manager.Delete(ctx, rec, false); err != nil {
				return fmt.Errorf("flow step %d: delete %s: %w", i, step.Entity, err)
			}
		}
		if step.Save {
			if err := h.manager.Save(ctx); err != nil {
				return fmt.Errorf("flow step %d: save: %w", i, err)
			}
		}

	case OpDeleteAll:
		if _, err := h.manager.DeleteAll(ctx, step.Entity, step.Save); err != nil {
			return fmt.Errorf("flow step %d: delete_all %s: %w", i, step.Entity, err)
		}

	default:
		return fmt.Errorf("flow step %d: unknown op %q", i, step.Op)
	}
	return nil
}

// toPayload converts YAML-decoded attribute values to a typed payload.
func toPayload(attrs map[string]any) (manager.Payload, error) {
	payload := make(manager.Payload, len(attrs))
	for key, raw := range attrs {
		v, err := value.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("attr %q: %w", key, err)
		}
		payload[key] = v
	}
	return payload, nil
}

// wherePredicate builds an AND of equality comparisons from a where map.
// Keys are visited in sorted order so the compiled SQL is deterministic.
// An empty or nil map means match-all (nil predicate).
func wherePredicate(where map[string]any) (query.Predicate, error) {
	if len(where) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(where))
	for key := range where {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	preds := make([]query.Predicate, 0, len(keys))
	for _, key := range keys {
		v, err := value.FromAny(where[key])
		if err != nil {
			return nil, fmt.Errorf("where %q: %w", key, err)
		}
		preds = append(preds, query.Eq(key, v))
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return query.AllOf(preds...), nil
}
