package gen

import (
	"fmt"

	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/field"
)

// The following types form the IR the emitters consume. A Graph is
// constructed fresh for every generation run, is immutable once
// validation succeeds, and is discarded after artifacts are emitted.
type (
	// Graph is the complete validated entity set of one generation run.
	Graph struct {
		*Config
		// Entities in loader order.
		Entities []*Entity
		entities map[string]*Entity
	}

	// Entity represents one schema-defined persistence model with its
	// fields and relations.
	Entity struct {
		*Config
		schema *load.Schema
		// Name holds the entity name, unique across the schema set.
		Name string
		// Table is the storage table identifier.
		Table string
		// ID holds the primary field. Set by the validator once the
		// exactly-one-primary invariant is confirmed.
		ID *Field
		// Fields in declaration order, implicit fields appended.
		Fields []*Field
		fields map[string]*Field
		// Relations declared on this entity.
		Relations []*Relation
		// Timestamps enables the auto-managed created_at/updated_at pair.
		Timestamps bool
		// SoftDelete enables the deleted_at marker column.
		SoftDelete bool
		// Warnings recorded while parsing, e.g. a user declaration
		// shadowing an implicit field.
		Warnings []string
	}

	// Field holds one column-backed attribute of an entity.
	Field struct {
		// Name is the column name in the schema document (snake_case).
		Name string
		// Type is the resolved member of the closed type enum.
		Type field.Type
		// Primary marks the primary key field.
		Primary bool
		// Unique adds a unique constraint.
		Unique bool
		// Required makes the field mandatory on create.
		Required bool
		// Nillable fields are nullable in storage and pointers in
		// generated structs.
		Nillable bool
		// Index requests a secondary index.
		Index bool
		// Default holds the declared default literal; HasDefault
		// distinguishes a declared nil from no declaration.
		Default    any
		HasDefault bool
		// MaxLength constrains string-like fields.
		MaxLength *int
		// UserDefined is false for implicit fields injected by the
		// parser (created_at, updated_at, deleted_at).
		UserDefined bool
	}

	// Relation is a declared association between two entities.
	Relation struct {
		// Kind is the relation cardinality.
		Kind Rel
		// Target is the declared target entity name.
		Target string
		// Type points to the resolved target entity. Resolution happens
		// in the validator's cross-entity pass, after every entity has
		// been built, so declaration order never matters.
		Type *Entity
		// ForeignKey is the explicit foreign-key column, if declared.
		// Only meaningful for many_to_one relations.
		ForeignKey string
		// BackPopulates names the attribute on the target entity for
		// bidirectional linkage. Recorded for emission; symmetry is not
		// validated.
		BackPopulates string
	}
)

// Rel is the relation cardinality enum.
type Rel int

// Relation cardinalities.
const (
	Unknown Rel = iota
	O2M         // one_to_many
	M2O         // many_to_one
	M2M         // many_to_many
)

var relTokens = map[string]Rel{
	"one_to_many":  O2M,
	"many_to_one":  M2O,
	"many_to_many": M2M,
}

// String returns the schema token for the relation kind.
func (r Rel) String() string {
	switch r {
	case O2M:
		return "one_to_many"
	case M2O:
		return "many_to_one"
	case M2M:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// ParseRel resolves a relation kind token. The second return value
// reports whether the token named a known kind.
func ParseRel(token string) (Rel, bool) {
	r, ok := relTokens[token]
	return r, ok
}

// Entity lookups and derived names.

// EntityByName returns the entity with the given name, or nil.
func (g *Graph) EntityByName(name string) *Entity {
	return g.entities[name]
}

// Warnings aggregates parser warnings across the graph, in entity order.
func (g *Graph) Warnings() []string {
	var ws []string
	for _, e := range g.Entities {
		ws = append(ws, e.Warnings...)
	}
	return ws
}

// StructName returns the exported Go identifier for the entity.
func (e *Entity) StructName() string {
	return Pascal(e.Name)
}

// Receiver returns a short receiver-style identifier for the entity,
// used in generated code.
func (e *Entity) Receiver() string {
	return receiver(e.Name)
}

// ResourcePath returns the REST resource path generated handlers mount
// under, derived from the table identifier.
func (e *Entity) ResourcePath() string {
	return "/" + e.Table
}

// FieldByName returns the field with the given column name, or nil.
func (e *Entity) FieldByName(name string) *Field {
	return e.fields[name]
}

// Columns returns the storage columns of the entity in emission order:
// declared and implicit fields first, then synthetic foreign-key columns
// for many_to_one relations without a user-declared foreign-key field.
// It must only be called on a validated graph.
func (e *Entity) Columns() []*Field {
	cols := make([]*Field, 0, len(e.Fields)+len(e.Relations))
	cols = append(cols, e.Fields...)
	for _, r := range e.Relations {
		if r.Kind != M2O || r.Type == nil {
			continue
		}
		name := r.Column()
		if e.fields[name] != nil {
			continue // user declared the foreign-key column explicitly
		}
		cols = append(cols, &Field{
			Name:     name,
			Type:     r.Type.ID.Type,
			Index:    true,
			Nillable: true,
		})
	}
	return cols
}

// StructField returns the exported Go identifier for the field.
func (f *Field) StructField() string {
	return Pascal(f.Name)
}

// Implicit reserved column names.
const (
	createdColumn = "created_at"
	updatedColumn = "updated_at"
	deletedColumn = "deleted_at"
)

// OnInsertNow reports if the field is stamped with the current time on
// insert. Only the parser-injected fields are auto-managed; a
// user-declared column of the same name behaves like any other field.
func (f *Field) OnInsertNow() bool {
	return !f.UserDefined && (f.Name == createdColumn || f.Name == updatedColumn)
}

// OnUpdateNow reports if the field is re-stamped on every update.
func (f *Field) OnUpdateNow() bool {
	return !f.UserDefined && f.Name == updatedColumn
}

// SoftDeleteMarker reports if the field is the soft-delete marker.
func (f *Field) SoftDeleteMarker() bool {
	return !f.UserDefined && f.Name == deletedColumn
}

// Attr returns the model attribute name for the relation: the singular
// snake_case target for many_to_one, the pluralized form otherwise.
func (r *Relation) Attr() string {
	if r.Kind == M2O {
		return Snake(r.Target)
	}
	return Plural(Snake(r.Target))
}

// StructField returns the exported Go identifier for the relation
// attribute.
func (r *Relation) StructField() string {
	return Pascal(r.Attr())
}

// Column returns the foreign-key column name for a many_to_one relation:
// the explicit foreign_key when declared, the snake_cased target name
// suffixed with _id otherwise.
func (r *Relation) Column() string {
	if r.ForeignKey != "" {
		return r.ForeignKey
	}
	return Snake(r.Target) + "_id"
}

// JoinTable returns the association table identifier for a many_to_many
// relation, derived from the owning and target entity names.
func (r *Relation) JoinTable(owner *Entity) string {
	return fmt.Sprintf("%s_%s", Snake(owner.Name), Snake(r.Target))
}

// Bidirectional reports if the relation declares back_populates linkage.
func (r *Relation) Bidirectional() bool {
	return r.BackPopulates != ""
}
