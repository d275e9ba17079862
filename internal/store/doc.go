// Package store provides the SQLite-backed entity store handle: a single
// mutable session over a schema-described container of entity collections.
//
// The container's tables are generated from the schema on Open, one table
// per entity collection with an id TEXT primary key and one typed column
// per attribute.
//
// # Session Model
//
// All mutations execute inside a session transaction begun lazily on the
// first write. Commit atomically flushes the pending changes; Close
// discards them. Queries issued while the transaction is open read through
// it, so the session always observes its own pending writes (read-your-
// writes within the session).
//
// The store assumes a single logical thread of control: there is no
// internal locking and no per-operation isolation. Callers that share a
// store across goroutines must serialize access externally.
//
// # Deterministic Query Results
//
// All queries include ORDER BY with an id ASC COLLATE BINARY tiebreaker.
// Record ids are UUIDv7, so default order is insertion order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
