package api

import "text/template"

// The import blocks below are deliberately over-complete; the writer
// runs every API artifact through import formatting, which drops the
// unused ones per entity.

var handlerTmpl = template.Must(template.New("handler").Parse(`// {{.Header}}

package {{.PkgName}}

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/hooks"
	"github.com/syssam/crudgen/rest"

	"{{.ModelPkg}}"
)

// {{.Entity}}CreateRequest is the creation payload of the {{.Resource}} resource.
type {{.Entity}}CreateRequest struct {
{{- range .Create}}
	{{.Ident}} {{.Type}} {{.Tag}}
{{- end}}
}

// {{.Entity}}UpdateRequest is the partial-update payload of the {{.Resource}}
// resource. Nil fields are left untouched.
type {{.Entity}}UpdateRequest struct {
{{- range .Update}}
	{{.Ident}} {{.Type}} {{.Tag}}
{{- end}}
}

// {{.Entity}}Response is the serialized row shape of the {{.Resource}} resource.
type {{.Entity}}Response struct {
{{- range .Response}}
	{{.Ident}} {{.Type}} {{.Tag}}
{{- end}}
}

func new{{.Entity}}Response(m *{{.ModelIdent}}.{{.Entity}}) {{.Entity}}Response {
	return {{.Entity}}Response{
{{- range .Response}}
		{{.Ident}}: m.{{.Ident}},
{{- end}}
	}
}

type {{.Handler}} struct {
	store crudgen.Store
	hooks *hooks.Registry
}

// Register{{.Entity}}Routes mounts the {{.Resource}} CRUD endpoints on r.
func Register{{.Entity}}Routes(r gin.IRouter, s crudgen.Store, reg *hooks.Registry) {
	h := &{{.Handler}}{store: s, hooks: reg}
	grp := r.Group("{{.Resource}}")
	grp.POST("", h.create)
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.PUT("/:id", h.update)
	grp.DELETE("/:id", h.delete)
}
{{if eq .IDKind "int"}}
func {{.IDFunc}}(c *gin.Context) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, rest.NewValidationError(fmt.Errorf("id must be an integer, got %q", raw))
	}
	return id, nil
}
{{- else if eq .IDKind "uuid"}}
func {{.IDFunc}}(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, rest.NewValidationError(fmt.Errorf("id must be a UUID, got %q", raw))
	}
	return id, nil
}
{{- else}}
func {{.IDFunc}}(c *gin.Context) (string, error) {
	return c.Param("id"), nil
}
{{- end}}

func (h *{{.Handler}}) create(c *gin.Context) {
	var req {{.Entity}}CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.RenderError(c, rest.NewBindError(err))
		return
	}
	if err := rest.Validate(&req); err != nil {
		rest.RenderError(c, err)
		return
	}
	m := &{{.ModelIdent}}.{{.Entity}}{
{{- range .Create}}
		{{.Ident}}: req.{{.Ident}},
{{- end}}
	}
{{- if .IDNew}}
	m.{{.IDIdent}} = uuid.New()
{{- end}}
	ctx := c.Request.Context()
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.BeforeCreate, m); err != nil {
		rest.RenderError(c, err)
		return
	}
	if err := h.store.Create(ctx, {{.ModelIdent}}.{{.Entity}}TableSpec(), m); err != nil {
		rest.RenderError(c, err)
		return
	}
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.AfterCreate, m); err != nil {
		rest.RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, new{{.Entity}}Response(m))
}

func (h *{{.Handler}}) list(c *gin.Context) {
	page, err := rest.BindPage(c)
	if err != nil {
		rest.RenderError(c, err)
		return
	}
	recs, total, err := h.store.List(c.Request.Context(), {{.ModelIdent}}.{{.Entity}}TableSpec(), page, func() crudgen.Record {
		return &{{.ModelIdent}}.{{.Entity}}{}
	})
	if err != nil {
		rest.RenderError(c, err)
		return
	}
	items := make([]{{.Entity}}Response, 0, len(recs))
	for _, rec := range recs {
		items = append(items, new{{.Entity}}Response(rec.(*{{.ModelIdent}}.{{.Entity}})))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "skip": page.Skip, "limit": page.Limit})
}

func (h *{{.Handler}}) get(c *gin.Context) {
	id, err := {{.IDFunc}}(c)
	if err != nil {
		rest.RenderError(c, err)
		return
	}
	var m {{.ModelIdent}}.{{.Entity}}
	if err := h.store.Get(c.Request.Context(), {{.ModelIdent}}.{{.Entity}}TableSpec(), id, &m); err != nil {
		rest.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, new{{.Entity}}Response(&m))
}

func (h *{{.Handler}}) update(c *gin.Context) {
	id, err := {{.IDFunc}}(c)
	if err != nil {
		rest.RenderError(c, err)
		return
	}
	var req {{.Entity}}UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.RenderError(c, rest.NewBindError(err))
		return
	}
	if err := rest.Validate(&req); err != nil {
		rest.RenderError(c, err)
		return
	}
	var (
		cols []string
		vals []any
	)
{{- range .Update}}
	if req.{{.Ident}} != nil {
		cols = append(cols, {{$.ModelIdent}}.{{$.Entity}}Field{{.Ident}})
		vals = append(vals, {{if .Slice}}req.{{.Ident}}{{else}}*req.{{.Ident}}{{end}})
	}
{{- end}}
	ctx := c.Request.Context()
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.BeforeUpdate, &req); err != nil {
		rest.RenderError(c, err)
		return
	}
	if err := h.store.Update(ctx, {{.ModelIdent}}.{{.Entity}}TableSpec(), id, cols, vals); err != nil {
		rest.RenderError(c, err)
		return
	}
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.AfterUpdate, &req); err != nil {
		rest.RenderError(c, err)
		return
	}
	var m {{.ModelIdent}}.{{.Entity}}
	if err := h.store.Get(ctx, {{.ModelIdent}}.{{.Entity}}TableSpec(), id, &m); err != nil {
		rest.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, new{{.Entity}}Response(&m))
}

func (h *{{.Handler}}) delete(c *gin.Context) {
	id, err := {{.IDFunc}}(c)
	if err != nil {
		rest.RenderError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.BeforeDelete, id); err != nil {
		rest.RenderError(c, err)
		return
	}
{{- if .SoftDelete}}
	if err := h.store.Archive(ctx, {{.ModelIdent}}.{{.Entity}}TableSpec(), id); err != nil {
		rest.RenderError(c, err)
		return
	}
{{- else}}
	if err := h.store.Delete(ctx, {{.ModelIdent}}.{{.Entity}}TableSpec(), id); err != nil {
		rest.RenderError(c, err)
		return
	}
{{- end}}
	if err := h.hooks.Run(ctx, "{{.Name}}", hooks.AfterDelete, id); err != nil {
		rest.RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
`))

var routesTmpl = template.Must(template.New("routes").Parse(`// {{.Header}}

package {{.PkgName}}

import (
	"github.com/gin-gonic/gin"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/hooks"
)

// RegisterRoutes mounts every generated resource on r.
func RegisterRoutes(r gin.IRouter, s crudgen.Store, reg *hooks.Registry) {
{{- range .Entities}}
	Register{{.}}Routes(r, s, reg)
{{- end}}
}
`))
