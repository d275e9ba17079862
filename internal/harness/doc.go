// Package harness provides a YAML-driven conformance harness for the
// persistence facade.
//
// A scenario names a schema, inserts setup records, runs a flow of store
// operations (insert, insert_if_absent, update, delete, delete_all) with
// optional instant saves, and then checks assertions against the final
// collection state. Each run gets a fresh container in a temporary
// directory, so scenarios never see each other's data.
//
// # Golden Snapshots
//
// Scenarios can list entity collections under snapshot; RunWithGolden
// serializes their final state to JSON and compares it against a golden
// file under testdata/golden. Record ids are excluded from snapshots
// because they are freshly minted on every run; the default fetch order
// is insertion order, which keeps the remaining content deterministic.
//
// # Assertion Types
//
//   - count: exactly N records match the where clause
//   - contains: at least one matching record carries all expected values
//
// Assertion failures accumulate in the Result; mechanical failures such
// as malformed YAML or an unknown entity abort the run with an error.
package harness
