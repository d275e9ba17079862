package store

import (
	"github.com/google/uuid"

	"github.com/roach88/stash/internal/value"
)

// Record is one schema-typed persisted object belonging to a named entity
// collection. Records are owned by the session once inserted and become
// invalid after deletion or after the store is closed.
type Record struct {
	// ID is the record identifier, a UUIDv7. Time-ordered ids make the
	// default fetch order (ORDER BY id) insertion order.
	ID string

	// Entity names the collection this record belongs to.
	Entity string

	// Attrs holds the record's attribute values keyed by attribute name.
	// Attributes absent from the map are null.
	Attrs map[string]value.Value
}

// NewRecord creates an empty record for the given entity collection with a
// freshly generated id.
func NewRecord(entity string) *Record {
	return &Record{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Entity: entity,
		Attrs:  make(map[string]value.Value),
	}
}

// Get returns the named attribute value. Missing attributes read as Null.
func (r *Record) Get(name string) value.Value {
	if v, ok := r.Attrs[name]; ok && v != nil {
		return v
	}
	return value.Null{}
}

// Set assigns the named attribute value.
func (r *Record) Set(name string, v value.Value) {
	r.Attrs[name] = v
}
