// crudgen compiles YAML schema documents into persistence models and
// gin CRUD endpoints. Run: crudgen -schema ./schema -pkg example.com/app
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/compiler/gen/api"
	"github.com/syssam/crudgen/compiler/gen/model"
	"github.com/syssam/crudgen/compiler/load"
)

func main() {
	var (
		schemaDir = flag.String("schema", "schema", "directory of YAML schema documents")
		modelDir  = flag.String("models", "models", "output directory of model artifacts")
		apiDir    = flag.String("api", "api", "output directory of API artifacts")
		pkg       = flag.String("pkg", "", "module import path of the generated code (required)")
		workers   = flag.Int("workers", runtime.GOMAXPROCS(0), "parallel artifact writers")
		watch     = flag.Bool("watch", false, "rerun generation when schema documents change")
	)
	flag.Parse()
	if *pkg == "" {
		fmt.Fprintln(os.Stderr, "crudgen: -pkg is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, *schemaDir, *modelDir, *apiDir, *pkg, *workers)
	if err != nil {
		report(err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}
	rerun := func() {
		if err := run(ctx, *schemaDir, *modelDir, *apiDir, *pkg, *workers); err != nil {
			report(err)
		}
	}
	if err := watchLoop(ctx, *schemaDir, rerun); err != nil {
		fmt.Fprintln(os.Stderr, "crudgen:", err)
		os.Exit(1)
	}
}

// run drives one full pipeline pass: load, parse, validate, generate.
func run(ctx context.Context, schemaDir, modelDir, apiDir, pkg string, workers int) error {
	start := time.Now()
	schemas, err := load.Load(schemaDir)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %d schema document(s) from %s\n", len(schemas), schemaDir)

	cfg, err := gen.NewConfig(
		gen.WithSchemaDir(schemaDir),
		gen.WithModelTarget(modelDir),
		gen.WithAPITarget(apiDir),
		gen.WithPackage(pkg),
		gen.WithWorkers(workers),
	)
	if err != nil {
		return err
	}
	graph, err := gen.NewGraph(cfg, schemas...)
	if err != nil {
		return err
	}
	for _, w := range graph.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	fmt.Printf("validated %d entity(ies)\n", len(graph.Entities))

	err = gen.NewGenerator(graph).
		WithModelEmitter(model.NewEmitter()).
		WithAPIEmitter(api.NewEmitter()).
		Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("wrote artifacts to %s and %s in %s\n",
		modelDir, apiDir, time.Since(start).Round(time.Millisecond))
	return nil
}

// report prints err to stderr, one line per validation diagnostic so a
// schema author sees every problem of the run at once.
func report(err error) {
	var verrs gen.ValidationErrors
	if errors.As(err, &verrs) {
		for _, d := range verrs {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// watchLoop reruns generation after schema-directory changes settle.
// Editors fire bursts of events per save, so reruns are debounced.
func watchLoop(ctx context.Context, dir string, rerun func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	fmt.Printf("watching %s for changes\n", dir)

	var timer *time.Timer
	settled := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !schemaFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case settled <- struct{}{}:
				default:
				}
			})
		case <-settled:
			rerun()
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", werr)
		}
	}
}

func schemaFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
