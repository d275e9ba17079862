package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/value"
)

// CollectionSnapshot is the final state of one entity collection,
// captured after a scenario run for golden comparison.
//
// Record ids are excluded: they are freshly minted uuids on every run
// and would make the snapshot nondeterministic. Records appear in
// default order, which is insertion order, so content alone identifies
// the state.
type CollectionSnapshot struct {
	Entity  string           `json:"entity"`
	Records []map[string]any `json:"records"`
}

// snapshotDoc is the JSON document written to the golden file.
type snapshotDoc struct {
	Scenario    string               `json:"scenario"`
	Collections []CollectionSnapshot `json:"collections"`
}

// SnapshotJSON serializes a result's collection snapshots in the golden
// file format. Used both by RunWithGolden and by the CLI test runner.
func SnapshotJSON(result *Result) ([]byte, error) {
	doc := snapshotDoc{
		Scenario:    result.Scenario,
		Collections: result.Collections,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// captureSnapshot fetches each named collection in full and converts
// records to native-typed maps keyed by attribute name.
func (h *harness) captureSnapshot(ctx context.Context, entities []string) ([]CollectionSnapshot, error) {
	collections := make([]CollectionSnapshot, 0, len(entities))
	for _, name := range entities {
		e, ok := h.schema.Entity(name)
		if !ok {
			return nil, fmt.Errorf("snapshot: unknown entity %q", name)
		}

		records, err := h.manager.Fetch(ctx, name, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: fetch %s: %w", name, err)
		}

		rows := make([]map[string]any, len(records))
		for i, rec := range records {
			row := make(map[string]any, len(e.Attributes))
			for _, attr := range e.Attributes {
				row[attr.Name] = value.Native(rec.Get(attr.Name))
			}
			rows[i] = row
		}
		collections = append(collections, CollectionSnapshot{Entity: name, Records: rows})
	}
	return collections, nil
}

// RunWithGolden executes a scenario and compares its collection
// snapshots against a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Assertion failures inside the scenario fail the test before the golden
// comparison; the golden file only ever captures a passing run.
func RunWithGolden(t *testing.T, scenario *Scenario, catalog *schema.Catalog) {
	t.Helper()

	result, err := Run(scenario, catalog)
	if err != nil {
		t.Fatalf("scenario %q: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	if t.Failed() {
		return
	}

	data, err := SnapshotJSON(result)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
