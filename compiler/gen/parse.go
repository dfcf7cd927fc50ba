package gen

import (
	"fmt"

	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/field"
)

// NewGraph parses every raw document into the IR and validates the
// complete set. Entities keep loader order. Relation targets are left
// unresolved during parsing so forward references work regardless of
// document order; the validator resolves them in a second pass.
func NewGraph(c *Config, schemas ...*load.Schema) (*Graph, error) {
	g := &Graph{
		Config:   c,
		Entities: make([]*Entity, 0, len(schemas)),
		entities: make(map[string]*Entity, len(schemas)),
	}
	for _, s := range schemas {
		e, err := NewEntity(c, s)
		if err != nil {
			return nil, err
		}
		g.Entities = append(g.Entities, e)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewEntity builds one Entity IR node from its raw document: resolves
// field type tokens against the closed enum, fills option defaults,
// parses relation blocks without resolving targets, and injects the
// implicit timestamp and soft-delete fields.
func NewEntity(c *Config, s *load.Schema) (*Entity, error) {
	e := &Entity{
		Config:     c,
		schema:     s,
		Name:       s.Name,
		Table:      s.Table,
		fields:     make(map[string]*Field, len(s.Fields)),
		Timestamps: s.Timestamps == nil || *s.Timestamps,
		SoftDelete: s.SoftDelete,
	}
	if e.Table == "" {
		e.Table = tableOf(s.Name)
	}
	for _, fd := range s.Fields {
		f, err := newField(e, fd)
		if err != nil {
			return nil, err
		}
		// Duplicate names are a validation concern; keep the first
		// occurrence in the lookup map and let the validator report.
		if _, ok := e.fields[f.Name]; !ok {
			e.fields[f.Name] = f
		}
		e.Fields = append(e.Fields, f)
	}
	for _, rd := range s.Relations {
		r, err := newRelation(e, rd)
		if err != nil {
			return nil, err
		}
		e.Relations = append(e.Relations, r)
	}
	e.injectImplicit()
	return e, nil
}

// newField resolves one raw field declaration.
func newField(e *Entity, fd *load.Field) (*Field, error) {
	if fd.Name == "" {
		return nil, NewParseError(e.Name, "", "field has an empty name", nil)
	}
	if fd.Type == "" {
		return nil, NewParseError(e.Name, fd.Name, "field lacks a type", nil)
	}
	t, ok := field.Parse(fd.Type)
	if !ok {
		return nil, NewParseError(e.Name, fd.Name, fmt.Sprintf("unknown type token %q", fd.Type), nil)
	}
	f := &Field{
		Name:        fd.Name,
		Type:        t,
		Primary:     fd.Primary,
		Unique:      fd.Unique,
		Required:    fd.Required,
		Index:       fd.Index,
		Default:     fd.Default,
		HasDefault:  fd.Default != nil,
		MaxLength:   fd.MaxLength,
		UserDefined: true,
	}
	// Nullability defaults to the inverse of required; primary fields
	// are never nullable.
	switch {
	case fd.Nullable != nil:
		f.Nillable = *fd.Nullable && !f.Primary
	default:
		f.Nillable = !f.Required && !f.Primary
	}
	return f, nil
}

// newRelation parses one raw relation block. Targets stay unresolved.
func newRelation(e *Entity, rd *load.Relation) (*Relation, error) {
	kind, ok := ParseRel(rd.Type)
	if !ok {
		err := &ParseError{Entity: e.Name, Relation: rd.Target, Message: fmt.Sprintf("unknown relation kind %q", rd.Type)}
		if rd.Target == "" {
			err.Relation = rd.Type
		}
		return nil, err
	}
	if rd.Target == "" {
		return nil, &ParseError{Entity: e.Name, Relation: kind.String(), Message: "relation lacks a target"}
	}
	return &Relation{
		Kind:          kind,
		Target:        rd.Target,
		ForeignKey:    rd.ForeignKey,
		BackPopulates: rd.BackPopulates,
	}, nil
}

// injectImplicit appends the auto-managed fields the entity flags ask
// for. A user-declared field of the same name always wins; the shadowed
// injection is skipped and a warning recorded.
func (e *Entity) injectImplicit() {
	var implicit []*Field
	if e.Timestamps {
		implicit = append(implicit,
			&Field{Name: createdColumn, Type: field.TypeDateTime, Required: true},
			&Field{Name: updatedColumn, Type: field.TypeDateTime, Required: true},
		)
	}
	if e.SoftDelete {
		implicit = append(implicit,
			&Field{Name: deletedColumn, Type: field.TypeDateTime, Nillable: true},
		)
	}
	for _, f := range implicit {
		if _, ok := e.fields[f.Name]; ok {
			e.Warnings = append(e.Warnings,
				fmt.Sprintf("entity %s: user-declared field %q shadows the implicit one; keeping the user declaration", e.Name, f.Name))
			continue
		}
		e.fields[f.Name] = f
		e.Fields = append(e.Fields, f)
	}
}
