package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// ModelEmitter produces persistence-model artifacts. Implemented by
// compiler/gen/model; kept as an interface here to avoid an import
// cycle, the same way dialect generators plug into the writer.
type ModelEmitter interface {
	// GenModel emits the model artifact of one entity.
	GenModel(t *Entity) *jen.File
	// GenTables emits the aggregate table-spec artifact of the graph.
	GenTables(g *Graph) *jen.File
}

// APIEmitter produces CRUD endpoint artifacts as raw source; the writer
// runs the output through import formatting before flushing.
type APIEmitter interface {
	// GenHandler emits the CRUD artifact of one entity.
	GenHandler(t *Entity) ([]byte, error)
	// GenRoutes emits the aggregate route-registration artifact.
	GenRoutes(g *Graph) ([]byte, error)
}

// Generator drives emission over a validated graph. Entities are
// mutually independent after validation, so per-entity artifacts are
// written by parallel workers; each worker owns its output file
// exclusively.
type Generator struct {
	graph   *Graph
	model   ModelEmitter
	api     APIEmitter
	workers int
}

// NewGenerator creates a generator for the validated graph. Emitters
// must be attached with WithModelEmitter and WithAPIEmitter before
// calling Generate.
func NewGenerator(g *Graph) *Generator {
	return &Generator{graph: g, workers: g.Workers}
}

// WithModelEmitter attaches the model artifact emitter.
func (g *Generator) WithModelEmitter(m ModelEmitter) *Generator {
	g.model = m
	return g
}

// WithAPIEmitter attaches the API artifact emitter.
func (g *Generator) WithAPIEmitter(a APIEmitter) *Generator {
	g.api = a
	return g
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate writes every artifact of the run. It is only reachable with
// a validated graph, so any failure here is a GenerationError. Writes
// already flushed when one worker fails are not rolled back; the
// pipeline is idempotent and rerunning after the fault recovers.
func (g *Generator) Generate(ctx context.Context) error {
	cfg := g.graph.Config
	switch {
	case g.model == nil:
		return NewConfigError("ModelEmitter", nil, "no model emitter set: call WithModelEmitter() before Generate()")
	case g.api == nil:
		return NewConfigError("APIEmitter", nil, "no API emitter set: call WithAPIEmitter() before Generate()")
	case cfg.ModelTarget == "":
		return NewConfigError("ModelTarget", nil, "missing model target directory in config")
	case cfg.APITarget == "":
		return NewConfigError("APITarget", nil, "missing API target directory in config")
	}
	for _, dir := range []string{cfg.ModelTarget, cfg.APITarget} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewGenerationError("setup", dir, "creating target directory", err)
		}
	}

	errg, _ := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)

	for _, t := range g.graph.Entities {
		errg.Go(func() error {
			return g.writeModel(g.model.GenModel(t), Snake(t.Name)+".go")
		})
		errg.Go(func() error {
			src, err := g.api.GenHandler(t)
			if err != nil {
				return NewGenerationError("api", Snake(t.Name)+".go", "rendering handler artifact", err)
			}
			return g.writeAPI(src, Snake(t.Name)+".go")
		})
	}

	errg.Go(func() error {
		return g.writeModel(g.model.GenTables(g.graph), "models.go")
	})
	errg.Go(func() error {
		src, err := g.api.GenRoutes(g.graph)
		if err != nil {
			return NewGenerationError("api", "routes.go", "rendering routes artifact", err)
		}
		return g.writeAPI(src, "routes.go")
	})

	if err := errg.Wait(); err != nil {
		return err
	}
	return g.writeManifest()
}

// writeModel renders a jennifer file into the model target.
func (g *Generator) writeModel(f *jen.File, name string) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("model", name, "rendering model artifact", err)
	}
	path := filepath.Join(g.graph.ModelTarget, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewGenerationError("model", name, "writing model artifact", err)
	}
	return nil
}

// writeAPI formats rendered source with goimports (removes unused
// imports, fixes grouping) and flushes it into the API target.
func (g *Generator) writeAPI(src []byte, name string) error {
	path := filepath.Join(g.graph.APITarget, name)
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		return NewGenerationError("api", name, "formatting handler artifact", err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError("api", name, "writing handler artifact", err)
	}
	return nil
}
