// Package schema defines the entity schema model for a stash container.
//
// A Schema names a set of entity collections. Each Entity describes one
// collection: its name and the typed attributes a record of that collection
// may carry. Schemas are described by host applications in CUE files and
// compiled with CompileSchema / LoadDir.
//
// Entity and attribute names are restricted to identifier characters because
// they become table and column names in the backing store.
package schema

import (
	"fmt"
	"regexp"
)

// Kind identifies the type of an attribute.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
)

// Schema describes one named container: a set of entity collections.
type Schema struct {
	// Name identifies the schema. Supplied by the host application's
	// schema source when resolving the container.
	Name string

	// Entities lists the entity collections in declaration order.
	// Declaration order is preserved so DDL and column lists are stable.
	Entities []Entity
}

// Entity describes one entity collection (analogous to a table).
type Entity struct {
	Name string

	// Attributes in declaration order.
	Attributes []Attribute
}

// Attribute describes one named, typed attribute of an entity.
type Attribute struct {
	Name string
	Kind Kind
}

// Entity returns the entity with the given name, or false if absent.
func (s *Schema) Entity(name string) (*Entity, bool) {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i], true
		}
	}
	return nil, false
}

// Attribute returns the attribute with the given name, or false if absent.
func (e *Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// identPattern restricts names that end up as SQL table/column identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name is usable as a table or column name.
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Validate checks structural invariants: valid identifiers, no duplicate
// entities or attributes, no entity without attributes, and no attribute
// named "id" (reserved for the record identifier column).
func (s *Schema) Validate() error {
	if !ValidIdent(s.Name) {
		return fmt.Errorf("invalid schema name %q", s.Name)
	}
	seenEntities := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if !ValidIdent(e.Name) {
			return fmt.Errorf("invalid entity name %q", e.Name)
		}
		if seenEntities[e.Name] {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		seenEntities[e.Name] = true

		if len(e.Attributes) == 0 {
			return fmt.Errorf("entity %q has no attributes", e.Name)
		}
		seenAttrs := make(map[string]bool, len(e.Attributes))
		for _, a := range e.Attributes {
			if !ValidIdent(a.Name) {
				return fmt.Errorf("entity %q: invalid attribute name %q", e.Name, a.Name)
			}
			if a.Name == "id" {
				return fmt.Errorf("entity %q: attribute name %q is reserved", e.Name, a.Name)
			}
			if seenAttrs[a.Name] {
				return fmt.Errorf("entity %q: duplicate attribute %q", e.Name, a.Name)
			}
			seenAttrs[a.Name] = true

			switch a.Kind {
			case KindString, KindInt, KindFloat, KindBool:
			default:
				return fmt.Errorf("entity %q: attribute %q has unknown kind %q", e.Name, a.Name, a.Kind)
			}
		}
	}
	return nil
}
