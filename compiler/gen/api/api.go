// Package api emits the CRUD endpoint artifacts: one gin handler file
// per entity plus the aggregate route registration. Output is rendered
// from text templates and is piped through import formatting by the
// generation writer, so templates only have to be parseable.
package api

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/field"
)

// Emitter implements the API side of artifact generation.
type Emitter struct{}

// NewEmitter creates the template-backed API emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// GenHandler emits the CRUD handler artifact of one entity.
func (em *Emitter) GenHandler(t *gen.Entity) ([]byte, error) {
	return render(handlerTmpl, newHandlerScope(t))
}

// GenRoutes emits the aggregate route-registration artifact.
func (em *Emitter) GenRoutes(g *gen.Graph) ([]byte, error) {
	scope := routesScope{
		Header:  g.Header,
		PkgName: path.Base(g.APIPackage()),
	}
	for _, t := range g.Entities {
		scope.Entities = append(scope.Entities, t.StructName())
	}
	return render(routesTmpl, scope)
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handlerScope is the flattened view of one entity the handler template
// renders from. Everything type- or name-shaped is resolved here so the
// template stays purely textual.
type handlerScope struct {
	Header     string
	PkgName    string
	ModelPkg   string
	ModelIdent string
	Entity     string // exported struct name, e.g. Post
	Handler    string // handler type, e.g. postHandler
	Name       string // schema entity name, the hook registry key
	Resource   string // mount path, e.g. /posts
	IDIdent    string // primary-key struct field
	IDFunc     string // path-parameter parse helper, e.g. postID
	IDKind     string // int, uuid or string
	IDNew      bool   // uuid primaries are minted in the create handler
	SoftDelete bool
	Create     []payloadField
	Update     []payloadField
	Response   []payloadField
}

// payloadField is one field of a request or response payload.
type payloadField struct {
	Ident string
	Type  string
	Tag   string
	Slice bool // nil-checked instead of dereferenced on update
}

type routesScope struct {
	Header   string
	PkgName  string
	Entities []string
}

func newHandlerScope(t *gen.Entity) handlerScope {
	name := t.StructName()
	s := handlerScope{
		Header:     t.Header,
		PkgName:    path.Base(t.APIPackage()),
		ModelPkg:   t.ModelPackage(),
		ModelIdent: path.Base(t.ModelPackage()),
		Entity:     name,
		Handler:    unexport(name) + "Handler",
		Name:       t.Name,
		Resource:   t.ResourcePath(),
		IDIdent:    t.ID.StructField(),
		IDFunc:     unexport(name) + "ID",
		IDKind:     idKind(t.ID.Type),
		IDNew:      t.ID.Type == field.TypeUUID,
		SoftDelete: t.SoftDelete,
	}
	for _, col := range t.Columns() {
		pf := payloadField{
			Ident: col.StructField(),
			Type:  goType(col),
			Tag:   jsonTag(col.Name, ""),
			Slice: sliceType(col.Type),
		}
		s.Response = append(s.Response, pf)
		if col.Primary || col.OnInsertNow() || col.OnUpdateNow() || col.SoftDeleteMarker() {
			continue
		}
		create := pf
		create.Tag = jsonTag(col.Name, validateRules(col, false))
		s.Create = append(s.Create, create)
		update := pf
		update.Tag = jsonTag(col.Name, validateRules(col, true))
		if !update.Slice {
			update.Type = "*" + baseType(col.Type)
		}
		s.Update = append(s.Update, update)
	}
	return s
}

func unexport(name string) string {
	return strings.ToLower(name[:1]) + name[1:]
}

// idKind picks the path-parameter parsing strategy for the primary key.
// Every other indexable type rides through as the raw string parameter.
func idKind(t field.Type) string {
	switch t {
	case field.TypeInteger:
		return "int"
	case field.TypeUUID:
		return "uuid"
	default:
		return "string"
	}
}

func goType(f *gen.Field) string {
	base := baseType(f.Type)
	if f.Nillable && !f.Primary && !sliceType(f.Type) {
		return "*" + base
	}
	return base
}

func baseType(t field.Type) string {
	switch t {
	case field.TypeString, field.TypeText:
		return "string"
	case field.TypeInteger:
		return "int"
	case field.TypeFloat:
		return "float64"
	case field.TypeBool:
		return "bool"
	case field.TypeDateTime, field.TypeDate, field.TypeTime:
		return "time.Time"
	case field.TypeUUID:
		return "uuid.UUID"
	case field.TypeJSON:
		return "json.RawMessage"
	case field.TypeBinary:
		return "[]byte"
	default:
		return "any"
	}
}

func sliceType(t field.Type) bool {
	return t == field.TypeJSON || t == field.TypeBinary
}

// validateRules derives the validate tag value of a payload field.
// Update payloads are partial, so required never applies there.
func validateRules(f *gen.Field, update bool) string {
	var rules []string
	if f.Required && !update {
		rules = append(rules, "required")
	}
	if f.MaxLength != nil && f.Type.Stringy() {
		if update {
			rules = append(rules, "omitempty")
		}
		rules = append(rules, fmt.Sprintf("max=%d", *f.MaxLength))
	}
	return strings.Join(rules, ",")
}

// jsonTag assembles the full struct tag, backticks included, so the
// templates never need a backtick literal.
func jsonTag(column, validate string) string {
	if validate == "" {
		return fmt.Sprintf("`json:%q`", column)
	}
	return fmt.Sprintf("`json:%q validate:%q`", column, validate)
}
