// Package manager provides the persistence facade over the entity store.
//
// A Manager exposes insert, deduplicated insert, update, predicate/sort
// fetch, delete, bulk delete, and save against the named entity
// collections of one schema-described container. The container is opened
// lazily: on first use the manager asks its SchemaSource for a schema
// name, looks the schema up in its catalog, and opens the backing store.
//
// # Resolution State Machine
//
// The handle moves Uninitialized -> Ready or Uninitialized -> Absent.
// Both outcomes are terminal for the manager's lifetime; there is no
// re-resolution. When resolution fails - missing source, source declined,
// unknown schema name, container open failure - every operation returns
// its absent result (nil record, nil slice, no-op) rather than an error.
// ResolutionError exposes the cause for diagnostics.
//
// # Error Surface
//
// Query failures return a QueryError, kept distinct from the empty
// result so callers can tell "nothing matched" from "the query broke".
// Commit failures return a CommitError and are never swallowed: a failed
// save means persisted and in-memory state may disagree, and only the
// caller can decide what to do about it.
package manager
