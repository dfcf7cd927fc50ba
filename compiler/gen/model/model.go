// Package model emits persistence-model artifacts: one Go file per
// entity carrying the model struct, its column constants, the record
// plumbing the generic store consumes, and the TableSpec the external
// migration driver derives schema changes from.
package model

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/field"
)

// Import paths referenced by generated model code.
const (
	crudgenPkg = "github.com/syssam/crudgen"
	fieldPkg   = "github.com/syssam/crudgen/schema/field"
	uuidPkg    = "github.com/google/uuid"
)

// Emitter implements gen.ModelEmitter.
type Emitter struct{}

// NewEmitter creates the model emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Compile-time interface check.
var _ gen.ModelEmitter = (*Emitter)(nil)

// GenModel emits the model artifact of one entity.
func (em *Emitter) GenModel(t *gen.Entity) *jen.File {
	f := em.newFile(t.Config)

	genTableConst(f, t)
	genColumnConsts(f, t)
	genStruct(f, t)
	genRecordMethods(f, t)
	genTableSpec(f, t)

	return f
}

// GenTables emits the aggregate artifact: the spec of every table in
// schema order, the migration driver's entry point.
func (em *Emitter) GenTables(g *gen.Graph) *jen.File {
	f := em.newFile(g.Config)

	f.Comment("Tables returns the spec of every generated table in schema order.")
	f.Func().Id("Tables").Params().Index().Qual(crudgenPkg, "TableSpec").Block(
		jen.Return(jen.Index().Qual(crudgenPkg, "TableSpec").ValuesFunc(func(vals *jen.Group) {
			for _, t := range g.Entities {
				vals.Id(t.StructName() + "TableSpec").Call()
			}
		})),
	)
	return f
}

// newFile creates a models-package file with the configured header.
func (em *Emitter) newFile(c *gen.Config) *jen.File {
	f := jen.NewFilePathName(c.ModelPackage(), "models")
	f.HeaderComment(c.Header)
	return f
}

func genTableConst(f *jen.File, t *gen.Entity) {
	f.Commentf("%sTable is the storage table of %s.", t.StructName(), t.StructName())
	f.Const().Id(t.StructName() + "Table").Op("=").Lit(t.Table)
}

func genColumnConsts(f *jen.File, t *gen.Entity) {
	f.Commentf("Column names of %s.", t.StructName())
	f.Const().DefsFunc(func(defs *jen.Group) {
		for _, col := range t.Columns() {
			defs.Id(t.StructName() + "Field" + pascalOf(col)).Op("=").Lit(col.Name)
		}
	})
}

func genStruct(f *jen.File, t *gen.Entity) {
	f.Commentf("%s is the generated model for the %s table.", t.StructName(), t.Table)
	f.Type().Id(t.StructName()).StructFunc(func(group *jen.Group) {
		for _, col := range t.Columns() {
			group.Id(pascalOf(col)).Add(goType(col)).Tag(map[string]string{
				"json": col.Name,
				"db":   col.Name,
			})
		}
		for _, r := range t.Relations {
			group.Id(r.StructField()).Add(relType(r)).Tag(map[string]string{
				"json": r.Attr() + ",omitempty",
				"db":   "-",
			})
		}
	})
	for _, r := range t.Relations {
		if r.Bidirectional() {
			f.Commentf("Relation %s: %s links back via %s.%s.",
				r.StructField(), r.Kind, r.Type.StructName(), gen.Pascal(r.BackPopulates))
		}
	}
}

func genRecordMethods(f *jen.File, t *gen.Entity) {
	name := t.StructName()
	rcv := t.Receiver()
	cols := t.Columns()

	f.Commentf("Table implements crudgen.Record for %s.", name)
	f.Func().Params(jen.Id(rcv).Op("*").Id(name)).Id("Table").Params().String().Block(
		jen.Return(jen.Id(name + "Table")),
	)

	f.Comment("Columns returns the column names in emission order.")
	f.Func().Params(jen.Id(rcv).Op("*").Id(name)).Id("Columns").Params().Index().String().Block(
		jen.Return(jen.Index().String().ValuesFunc(func(vals *jen.Group) {
			for _, col := range cols {
				vals.Id(name + "Field" + pascalOf(col))
			}
		})),
	)

	f.Comment("Values returns the column values aligned with Columns.")
	f.Func().Params(jen.Id(rcv).Op("*").Id(name)).Id("Values").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().ValuesFunc(func(vals *jen.Group) {
			for _, col := range cols {
				vals.Id(rcv).Dot(pascalOf(col))
			}
		})),
	)

	f.Comment("ScanDest returns scan destinations aligned with Columns.")
	f.Func().Params(jen.Id(rcv).Op("*").Id(name)).Id("ScanDest").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().ValuesFunc(func(vals *jen.Group) {
			for _, col := range cols {
				vals.Op("&").Id(rcv).Dot(pascalOf(col))
			}
		})),
	)

	f.Commentf("PrimaryKey returns the value of the %s column.", t.ID.Name)
	f.Func().Params(jen.Id(rcv).Op("*").Id(name)).Id("PrimaryKey").Params().Any().Block(
		jen.Return(jen.Id(rcv).Dot(t.ID.StructField())),
	)
}

func genTableSpec(f *jen.File, t *gen.Entity) {
	name := t.StructName()
	f.Commentf("%sTableSpec describes the %s table for the store and the migration driver.", name, t.Table)
	f.Func().Id(name+"TableSpec").Params().Qual(crudgenPkg, "TableSpec").Block(
		jen.Return(jen.Qual(crudgenPkg, "TableSpec").Values(jen.Dict{
			jen.Id("Name"):    jen.Id(name + "Table"),
			jen.Id("Columns"): columnSpecs(t),
			jen.Id("JoinTables"): jen.Index().Qual(crudgenPkg, "JoinSpec").ValuesFunc(func(vals *jen.Group) {
				for _, r := range t.Relations {
					if r.Kind != gen.M2M {
						continue
					}
					d := jen.Dict{
						jen.Id("Name"):         jen.Lit(r.JoinTable(t)),
						jen.Id("OwnerColumn"):  jen.Lit(gen.Snake(t.Name) + "_id"),
						jen.Id("TargetColumn"): jen.Lit(gen.Snake(r.Target) + "_id"),
						jen.Id("TargetTable"):  jen.Lit(r.Type.Table),
					}
					if r.BackPopulates != "" {
						d[jen.Id("BackPopulates")] = jen.Lit(r.BackPopulates)
					}
					vals.Values(d)
				}
			}),
		})),
	)
}

func columnSpecs(t *gen.Entity) jen.Code {
	return jen.Index().Qual(crudgenPkg, "ColumnSpec").ValuesFunc(func(vals *jen.Group) {
		for _, col := range t.Columns() {
			d := jen.Dict{
				jen.Id("Name"): jen.Lit(col.Name),
				jen.Id("Type"): jen.Qual(fieldPkg, typeConst(col.Type)),
			}
			if col.Primary {
				d[jen.Id("Primary")] = jen.True()
			}
			if col.Unique {
				d[jen.Id("Unique")] = jen.True()
			}
			if col.Required {
				d[jen.Id("Required")] = jen.True()
			}
			if col.Index {
				d[jen.Id("Index")] = jen.True()
			}
			if col.MaxLength != nil {
				d[jen.Id("MaxLength")] = jen.Lit(*col.MaxLength)
			}
			if col.HasDefault {
				d[jen.Id("Default")] = defaultLit(col.Default)
			}
			if col.OnInsertNow() {
				d[jen.Id("OnInsertNow")] = jen.True()
			}
			if col.OnUpdateNow() {
				d[jen.Id("OnUpdateNow")] = jen.True()
			}
			if col.SoftDeleteMarker() {
				d[jen.Id("SoftDeleteMarker")] = jen.True()
			}
			vals.Values(d)
		}
	})
}

// pascalOf returns the struct-field identifier of a column.
func pascalOf(f *gen.Field) string {
	return f.StructField()
}

// goType maps a column onto its Go type. Optional non-primary scalars
// become pointers; json and binary columns are already nil-able slices.
func goType(f *gen.Field) jen.Code {
	base := baseType(f.Type)
	if f.Nillable && !f.Primary && f.Type != field.TypeJSON && f.Type != field.TypeBinary {
		return jen.Op("*").Add(base)
	}
	return base
}

func baseType(t field.Type) jen.Code {
	switch t {
	case field.TypeString, field.TypeText:
		return jen.String()
	case field.TypeInteger:
		return jen.Int()
	case field.TypeFloat:
		return jen.Float64()
	case field.TypeBool:
		return jen.Bool()
	case field.TypeDateTime, field.TypeDate, field.TypeTime:
		return jen.Qual("time", "Time")
	case field.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	case field.TypeJSON:
		return jen.Qual("encoding/json", "RawMessage")
	case field.TypeBinary:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

// relType maps a relation onto its struct-field type: a pointer for the
// owning side of many_to_one, a slice otherwise.
func relType(r *gen.Relation) jen.Code {
	if r.Kind == gen.M2O {
		return jen.Op("*").Id(r.Type.StructName())
	}
	return jen.Index().Op("*").Id(r.Type.StructName())
}

func typeConst(t field.Type) string {
	switch t {
	case field.TypeString:
		return "TypeString"
	case field.TypeInteger:
		return "TypeInteger"
	case field.TypeFloat:
		return "TypeFloat"
	case field.TypeBool:
		return "TypeBool"
	case field.TypeDateTime:
		return "TypeDateTime"
	case field.TypeDate:
		return "TypeDate"
	case field.TypeTime:
		return "TypeTime"
	case field.TypeUUID:
		return "TypeUUID"
	case field.TypeText:
		return "TypeText"
	case field.TypeJSON:
		return "TypeJSON"
	case field.TypeBinary:
		return "TypeBinary"
	default:
		return "TypeInvalid"
	}
}

// defaultLit renders a declared default literal.
func defaultLit(v any) jen.Code {
	switch x := v.(type) {
	case string:
		return jen.Lit(x)
	case bool:
		return jen.Lit(x)
	case int:
		return jen.Lit(x)
	case int64:
		return jen.Lit(x)
	case float64:
		return jen.Lit(x)
	default:
		return jen.Nil()
	}
}
