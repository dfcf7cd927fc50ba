// Package crudgen is the runtime contract between generated artifacts
// and their collaborators. Generated model artifacts implement Record
// and describe themselves with a TableSpec; generated API handlers talk
// to persistence exclusively through the Store interface, so access
// control, pooling and the actual database live entirely outside the
// generated code.
package crudgen

import (
	"context"

	"github.com/syssam/crudgen/schema/field"
)

// Record is implemented by every generated model struct. It exposes the
// column plumbing a generic Store needs to persist and hydrate the
// entity without reflection.
type Record interface {
	// Table returns the storage table identifier.
	Table() string
	// Columns returns the column names in emission order.
	Columns() []string
	// Values returns the column values aligned with Columns.
	Values() []any
	// ScanDest returns scan destinations aligned with Columns.
	ScanDest() []any
}

// Store is the persistence contract generated handlers are written
// against. Implementations decide dialect and connection handling;
// generated code never opens a connection itself.
type Store interface {
	// Create inserts the record. Unique-constraint violations surface
	// as a ConflictError.
	Create(ctx context.Context, spec TableSpec, rec Record) error
	// List returns one page of records plus the total count. Rows
	// carrying a soft-delete marker are excluded.
	List(ctx context.Context, spec TableSpec, page Page, newRec func() Record) ([]Record, int, error)
	// Get hydrates rec by primary key; NotFoundError when absent.
	Get(ctx context.Context, spec TableSpec, id any, rec Record) error
	// Update mutates only the given columns of the row with the primary
	// key id; NotFoundError when absent.
	Update(ctx context.Context, spec TableSpec, id any, columns []string, values []any) error
	// Delete removes the row physically; NotFoundError when absent.
	Delete(ctx context.Context, spec TableSpec, id any) error
	// Archive performs the soft-delete marking update instead of row
	// removal; NotFoundError when absent.
	Archive(ctx context.Context, spec TableSpec, id any) error
}

// TableSpec describes one generated table for the Store and for the
// external migration driver that derives schema changes from it.
type TableSpec struct {
	// Name is the table identifier.
	Name string
	// Columns in emission order.
	Columns []ColumnSpec
	// JoinTables lists many_to_many association tables owned by this
	// entity, as "owner target" column pairs keyed by table name.
	JoinTables []JoinSpec
}

// ColumnSpec describes one column of a generated table.
type ColumnSpec struct {
	// Name is the column identifier.
	Name string
	// Type is the schema type the column was declared with; the
	// migration driver maps it onto its dialect vocabulary.
	Type field.Type
	// Constraint flags.
	Primary  bool
	Unique   bool
	Required bool
	Index    bool
	// MaxLength bounds string-like columns; zero means unbounded.
	MaxLength int
	// Default holds the declared default literal, nil when absent.
	Default any
	// Auto-managed column semantics.
	OnInsertNow      bool // stamped with the current time on insert
	OnUpdateNow      bool // re-stamped on every update
	SoftDeleteMarker bool // set by Archive, filters List/Get
}

// JoinSpec describes a many_to_many association table.
type JoinSpec struct {
	Name          string
	OwnerColumn   string
	TargetColumn  string
	TargetTable   string
	BackPopulates string
}

// Primary returns the primary-key column, or nil when the spec carries
// none (which a validated schema never produces).
func (s TableSpec) Primary() *ColumnSpec {
	for i := range s.Columns {
		if s.Columns[i].Primary {
			return &s.Columns[i]
		}
	}
	return nil
}

// Marker returns the soft-delete marker column, or nil.
func (s TableSpec) Marker() *ColumnSpec {
	for i := range s.Columns {
		if s.Columns[i].SoftDeleteMarker {
			return &s.Columns[i]
		}
	}
	return nil
}

// UpdateStamp returns the set-on-update column, or nil.
func (s TableSpec) UpdateStamp() *ColumnSpec {
	for i := range s.Columns {
		if s.Columns[i].OnUpdateNow {
			return &s.Columns[i]
		}
	}
	return nil
}

// Page bounds a list operation.
type Page struct {
	Skip  int
	Limit int
}

// Pagination bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Clamp normalizes the page into the allowed bounds.
func (p Page) Clamp() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
