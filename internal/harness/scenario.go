package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario for the persistence
// facade. Scenarios execute a sequence of store operations against a
// fresh container and assert on the resulting collection state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema names the schema (within the catalog passed to Run) the
	// container is opened with.
	Schema string `yaml:"schema"`

	// Setup contains inserts executed and saved before the main flow.
	Setup []InsertStep `yaml:"setup,omitempty"`

	// Flow contains the main operation sequence.
	Flow []OpStep `yaml:"flow"`

	// Assertions validate the final collection state.
	// Supported types: count, contains
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Snapshot lists entity collections to capture for golden
	// comparison after the flow completes.
	Snapshot []string `yaml:"snapshot,omitempty"`
}

// InsertStep inserts one record during setup.
type InsertStep struct {
	// Entity is the collection to insert into.
	Entity string `yaml:"entity"`

	// Attrs contains the attribute payload. Values are converted to
	// typed attribute values during execution.
	Attrs map[string]any `yaml:"attrs"`
}

// OpStep is one operation of the main flow.
type OpStep struct {
	// Op is the operation: insert, insert_if_absent, update, delete,
	// or delete_all.
	Op string `yaml:"op"`

	// Entity is the collection the operation targets.
	Entity string `yaml:"entity"`

	// Attrs is the attribute payload (insert, insert_if_absent, update).
	Attrs map[string]any `yaml:"attrs,omitempty"`

	// Where selects records by attribute equality, combined with AND.
	// Used as the dedupe predicate (insert_if_absent) or to pick the
	// records to mutate (update, delete).
	Where map[string]any `yaml:"where,omitempty"`

	// Save triggers an instant save for this operation.
	Save bool `yaml:"save,omitempty"`

	// ExpectInserted validates the insert_if_absent outcome when set:
	// true means a record must be created, false means the insert must
	// be skipped.
	ExpectInserted *bool `yaml:"expect_inserted,omitempty"`
}

// Assertion validates final collection state.
type Assertion struct {
	// Type is the assertion type: "count" or "contains".
	Type string `yaml:"type"`

	// Entity is the collection to check.
	Entity string `yaml:"entity"`

	// Where filters by attribute equality before checking.
	Where map[string]any `yaml:"where,omitempty"`

	// Count is the expected number of matching records (type count).
	Count int `yaml:"count,omitempty"`

	// Expect contains expected attribute values; at least one matching
	// record must carry all of them (type contains).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertCount    = "count"
	AssertContains = "contains"
)

// Operation name constants.
const (
	OpInsert         = "insert"
	OpInsertIfAbsent = "insert_if_absent"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpDeleteAll      = "delete_all"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("scenario %q: schema is required", s.Name)
	}
	for i, step := range s.Flow {
		switch step.Op {
		case OpInsert, OpInsertIfAbsent, OpUpdate, OpDelete, OpDeleteAll:
		default:
			return fmt.Errorf("scenario %q: flow[%d]: unknown op %q", s.Name, i, step.Op)
		}
		if step.Entity == "" {
			return fmt.Errorf("scenario %q: flow[%d]: entity is required", s.Name, i)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertCount, AssertContains:
		default:
			return fmt.Errorf("scenario %q: assertions[%d]: unknown type %q", s.Name, i, a.Type)
		}
	}
	return nil
}
