package manager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/store"
)

// SchemaSource supplies the name of the schema the container should be
// opened with. It is the one capability the host application must provide.
//
// Returning false permanently disables persistence for the manager: the
// handle never materializes, no retry is attempted, and every operation
// returns its absent result.
type SchemaSource interface {
	SchemaName() (string, bool)
}

// SchemaSourceFunc adapts a function to the SchemaSource interface.
type SchemaSourceFunc func() (string, bool)

func (f SchemaSourceFunc) SchemaName() (string, bool) { return f() }

// Options configures a Manager.
type Options struct {
	// Source supplies the schema name. The manager does not own it.
	Source SchemaSource

	// Catalog holds the compiled schemas the source may name.
	Catalog *schema.Catalog

	// Dir is the directory holding container databases. The container
	// for schema "tasks" lives at Dir/tasks.db.
	Dir string
}

// resolveState tracks the entity store handle lifecycle. Both Ready and
// Absent are terminal: once reached, the manager never re-resolves.
type resolveState int

const (
	stateUninitialized resolveState = iota
	stateReady
	stateAbsent
)

// Manager is the persistence facade: it exposes the store operations
// against a lazily-resolved entity store handle.
//
// Construct one explicitly and pass it where needed; the manager is an
// injected service, not a process-wide global. It assumes a single
// logical thread of control, like the session it owns.
//
// Every operation requires the handle to be resolvable. When it is not
// (no source, source returned false, unknown schema name, or the
// container failed to open), operations return their absent result -
// nil record, nil slice, no-op - rather than failing loudly. This favors
// availability of the API surface over strict error propagation for
// configuration problems. The one exception is Save: commit failures are
// always surfaced.
type Manager struct {
	source  SchemaSource
	catalog *schema.Catalog
	dir     string

	state   resolveState
	session *store.Store
	lastErr error // why resolution failed, for diagnostics
}

// New creates a Manager. The container is not opened until the first
// operation needs it.
func New(opts Options) *Manager {
	return &Manager{
		source:  opts.Source,
		catalog: opts.Catalog,
		dir:     opts.Dir,
	}
}

// resolve lazily materializes the entity store handle, memoizing the
// outcome. State transitions are Uninitialized -> Ready or Uninitialized
// -> Absent, both terminal.
func (m *Manager) resolve() (*store.Store, bool) {
	switch m.state {
	case stateReady:
		return m.session, true
	case stateAbsent:
		return nil, false
	}

	m.state = stateAbsent

	if m.source == nil {
		m.lastErr = fmt.Errorf("no schema source configured")
		return nil, false
	}
	name, ok := m.source.SchemaName()
	if !ok {
		m.lastErr = fmt.Errorf("schema source returned no schema name")
		return nil, false
	}
	if m.catalog == nil {
		m.lastErr = fmt.Errorf("no schema catalog configured")
		return nil, false
	}
	sch, ok := m.catalog.Schema(name)
	if !ok {
		m.lastErr = fmt.Errorf("schema %q not found in catalog", name)
		return nil, false
	}

	session, err := store.Open(filepath.Join(m.dir, name+".db"), sch)
	if err != nil {
		m.lastErr = fmt.Errorf("open container: %w", err)
		return nil, false
	}

	m.session = session
	m.state = stateReady
	return session, true
}

// ResolutionError returns why the handle could not be resolved, or nil.
// Operations never surface this themselves; it exists for diagnostics.
func (m *Manager) ResolutionError() error {
	return m.lastErr
}

// Close releases the container, discarding uncommitted changes.
func (m *Manager) Close() error {
	if m.session == nil {
		return nil
	}
	return m.session.Close()
}

// Insert creates a new record in the entity collection, applies the
// payload, and optionally saves immediately. It always creates, even if
// an equivalent record exists - duplicates are permitted.
//
// Returns (nil, nil) when the handle is unresolvable.
func (m *Manager) Insert(ctx context.Context, entity string, payload Payload, instantSave bool) (*store.Record, error) {
	session, ok := m.resolve()
	if !ok {
		return nil, nil
	}

	e, found := session.Schema().Entity(entity)
	if !found {
		return nil, fmt.Errorf("insert: unknown entity %q", entity)
	}

	rec := store.NewRecord(entity)
	if _, err := applyPayload(e, rec, payload); err != nil {
		return nil, fmt.Errorf("insert %s: %w", entity, err)
	}
	if err := session.Insert(ctx, rec); err != nil {
		return nil, err
	}

	if instantSave {
		if err := m.Save(ctx); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// InsertIfAbsent inserts only when no existing record matches the
// predicate. When one or more records match, it returns (nil, nil) and
// performs no mutation.
//
// A failed duplicate-check query returns a QueryError rather than
// silently proceeding as if a duplicate existed.
func (m *Manager) InsertIfAbsent(ctx context.Context, entity string, pred query.Predicate, payload Payload, instantSave bool) (*store.Record, error) {
	session, ok := m.resolve()
	if !ok {
		return nil, nil
	}

	existing, err := session.Query(ctx, entity, pred, nil)
	if err != nil {
		return nil, &QueryError{Entity: entity, Err: err}
	}
	if len(existing) > 0 {
		return nil, nil
	}

	return m.Insert(ctx, entity, payload, instantSave)
}

// Update overwrites each schema-declared attribute named in the payload;
// payload keys unknown to the schema are ignored. Always returns the
// record, mutated or not. An empty (or fully unknown) payload leaves the
// record and the session untouched.
func (m *Manager) Update(ctx context.Context, rec *store.Record, payload Payload, instantSave bool) (*store.Record, error) {
	session, ok := m.resolve()
	if !ok {
		return rec, nil
	}

	e, found := session.Schema().Entity(rec.Entity)
	if !found {
		return rec, fmt.Errorf("update: unknown entity %q", rec.Entity)
	}

	applied, err := applyPayload(e, rec, payload)
	if err != nil {
		return rec, fmt.Errorf("update %s: %w", rec.Entity, err)
	}
	if applied == 0 {
		return rec, nil
	}

	if err := session.Update(ctx, rec); err != nil {
		return rec, err
	}

	if instantSave {
		if err := m.Save(ctx); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Fetch returns all records of the collection matching the predicate
// (nil = match all), ordered per the sort specification (nil = default
// order). The sequence is fully materialized; an empty result is an
// empty slice, not nil.
//
// Returns (nil, nil) when the handle is unresolvable; a failed query
// returns a QueryError, distinct from the empty result.
func (m *Manager) Fetch(ctx context.Context, entity string, pred query.Predicate, sort query.Sort) ([]*store.Record, error) {
	session, ok := m.resolve()
	if !ok {
		return nil, nil
	}

	records, err := session.Query(ctx, entity, pred, sort)
	if err != nil {
		return nil, &QueryError{Entity: entity, Err: err}
	}
	return records, nil
}

// Delete marks the record for removal from its session, optionally saving
// immediately. A no-op when the handle is unresolvable.
func (m *Manager) Delete(ctx context.Context, rec *store.Record, instantSave bool) error {
	session, ok := m.resolve()
	if !ok {
		return nil
	}

	if err := session.Delete(ctx, rec); err != nil {
		return err
	}

	if instantSave {
		return m.Save(ctx)
	}
	return nil
}

// DeleteAll removes every record of the collection: a fetch with no
// predicate followed by individual deletions, then a single save when
// instantSave is set. Returns the number of records deleted.
//
// N individual deletions, not a bulk statement - acceptable for small
// collections.
func (m *Manager) DeleteAll(ctx context.Context, entity string, instantSave bool) (int, error) {
	session, ok := m.resolve()
	if !ok {
		return 0, nil
	}

	records, err := m.Fetch(ctx, entity, nil, nil)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := session.Delete(ctx, rec); err != nil {
			return 0, err
		}
	}

	if instantSave {
		if err := m.Save(ctx); err != nil {
			return len(records), err
		}
	}
	return len(records), nil
}

// Save commits pending session changes atomically to the backing store.
// A no-op when nothing is pending or the handle is unresolvable.
//
// A failed commit returns a CommitError - never swallowed, never fatal
// to the process - so the caller learns that persisted and in-memory
// state may disagree.
func (m *Manager) Save(ctx context.Context) error {
	session, ok := m.resolve()
	if !ok {
		return nil
	}

	if !session.Pending() {
		return nil
	}
	if err := session.Commit(ctx); err != nil {
		return &CommitError{Err: err}
	}
	return nil
}
