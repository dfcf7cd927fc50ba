package gen_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/compiler/gen/api"
	"github.com/syssam/crudgen/compiler/gen/model"
	"github.com/syssam/crudgen/compiler/load"
)

func userSchema() *load.Schema {
	return &load.Schema{
		Name: "User",
		Fields: []*load.Field{
			{Name: "id", Type: "uuid", Primary: true},
			{Name: "email", Type: "string", Required: true, Unique: true, MaxLength: intPtr(255)},
		},
		Relations: []*load.Relation{
			{Type: "one_to_many", Target: "Post", BackPopulates: "user"},
		},
	}
}

func postSchema() *load.Schema {
	return &load.Schema{
		Name:       "Post",
		SoftDelete: true,
		Fields: []*load.Field{
			{Name: "id", Type: "integer", Primary: true},
			{Name: "title", Type: "string", Required: true, MaxLength: intPtr(200)},
			{Name: "body", Type: "text"},
		},
		Relations: []*load.Relation{
			{Type: "many_to_one", Target: "User", BackPopulates: "posts"},
		},
	}
}

func intPtr(n int) *int { return &n }

// generate runs the full pipeline into fresh directories and returns
// them.
func generate(t *testing.T, schemas ...*load.Schema) (string, string) {
	t.Helper()
	modelDir := filepath.Join(t.TempDir(), "models")
	apiDir := filepath.Join(t.TempDir(), "api")

	cfg, err := gen.NewConfig(
		gen.WithPackage("example.com/blog"),
		gen.WithModelTarget(modelDir),
		gen.WithAPITarget(apiDir),
		gen.WithWorkers(2),
	)
	require.NoError(t, err)
	graph, err := gen.NewGraph(cfg, schemas...)
	require.NoError(t, err)
	err = gen.NewGenerator(graph).
		WithModelEmitter(model.NewEmitter()).
		WithAPIEmitter(api.NewEmitter()).
		Generate(context.Background())
	require.NoError(t, err)
	return modelDir, apiDir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestGenerateArtifacts(t *testing.T) {
	modelDir, apiDir := generate(t, userSchema(), postSchema())

	t.Run("per-entity and aggregate files exist", func(t *testing.T) {
		for _, name := range []string{"user.go", "post.go", "models.go", gen.ManifestName} {
			_, err := os.Stat(filepath.Join(modelDir, name))
			assert.NoError(t, err, name)
		}
		for _, name := range []string{"user.go", "post.go", "routes.go"} {
			_, err := os.Stat(filepath.Join(apiDir, name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("model artifact carries struct, constants and spec", func(t *testing.T) {
		src := readFile(t, modelDir, "user.go")
		assert.Contains(t, src, "// Code generated by crudgen. DO NOT EDIT.")
		assert.Contains(t, src, "type User struct {")
		assert.Contains(t, src, `UserTable = "users"`)
		assert.Contains(t, src, "func UserTableSpec()")
		assert.Contains(t, src, "func (u *User) ScanDest()")
	})

	t.Run("timestamp columns are a superset of the declared ones", func(t *testing.T) {
		src := readFile(t, modelDir, "post.go")
		for _, col := range []string{"created_at", "updated_at", "deleted_at"} {
			assert.Contains(t, src, col)
		}
		assert.Contains(t, src, "OnInsertNow")
		assert.Contains(t, src, "SoftDeleteMarker")
	})

	t.Run("api artifact carries payloads, routes and hooks", func(t *testing.T) {
		src := readFile(t, apiDir, "post.go")
		assert.Contains(t, src, "type PostCreateRequest struct {")
		assert.Contains(t, src, "type PostUpdateRequest struct {")
		assert.Contains(t, src, "type PostResponse struct {")
		assert.Contains(t, src, "func RegisterPostRoutes(r gin.IRouter, s crudgen.Store, reg *hooks.Registry)")
		assert.Contains(t, src, "hooks.BeforeCreate")
		assert.Contains(t, src, "hooks.AfterDelete")
	})

	t.Run("soft-delete entity archives instead of deleting", func(t *testing.T) {
		post := readFile(t, apiDir, "post.go")
		assert.Contains(t, post, "h.store.Archive(")
		assert.NotContains(t, post, "h.store.Delete(")

		user := readFile(t, apiDir, "user.go")
		assert.Contains(t, user, "h.store.Delete(")
		assert.NotContains(t, user, "h.store.Archive(")
	})

	t.Run("uuid primary is minted in the create handler", func(t *testing.T) {
		src := readFile(t, apiDir, "user.go")
		assert.Contains(t, src, "m.ID = uuid.New()")
	})

	t.Run("aggregate routes cover every entity", func(t *testing.T) {
		src := readFile(t, apiDir, "routes.go")
		assert.Contains(t, src, "RegisterUserRoutes(r, s, reg)")
		assert.Contains(t, src, "RegisterPostRoutes(r, s, reg)")
	})

	t.Run("manifest lists entities sorted by name", func(t *testing.T) {
		src := readFile(t, modelDir, gen.ManifestName)
		lines := strings.Split(strings.TrimSpace(src), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "Post\t"))
		assert.True(t, strings.HasPrefix(lines[1], "User\t"))
	})
}

func TestGenerateIdempotent(t *testing.T) {
	modelA, apiA := generate(t, userSchema(), postSchema())
	modelB, apiB := generate(t, userSchema(), postSchema())

	for _, name := range []string{"user.go", "post.go", "models.go", gen.ManifestName} {
		assert.Equal(t, readFile(t, modelA, name), readFile(t, modelB, name), name)
	}
	for _, name := range []string{"user.go", "post.go", "routes.go"} {
		assert.Equal(t, readFile(t, apiA, name), readFile(t, apiB, name), name)
	}
}

func TestGeneratePerEntityOrderIndependent(t *testing.T) {
	// Per-entity artifacts only depend on their own IR; aggregates keep
	// loader order, which the loader pins by sorting filenames.
	modelA, apiA := generate(t, userSchema(), postSchema())
	modelB, apiB := generate(t, postSchema(), userSchema())

	for _, name := range []string{"user.go", "post.go", gen.ManifestName} {
		assert.Equal(t, readFile(t, modelA, name), readFile(t, modelB, name), name)
	}
	for _, name := range []string{"user.go", "post.go"} {
		assert.Equal(t, readFile(t, apiA, name), readFile(t, apiB, name), name)
	}
}

func TestGenerateConfigChecks(t *testing.T) {
	cfg, err := gen.NewConfig(
		gen.WithPackage("example.com/blog"),
		gen.WithModelTarget(t.TempDir()),
		gen.WithAPITarget(t.TempDir()),
	)
	require.NoError(t, err)
	graph, err := gen.NewGraph(cfg, userSchema(), postSchema())
	require.NoError(t, err)

	t.Run("missing model emitter", func(t *testing.T) {
		err := gen.NewGenerator(graph).WithAPIEmitter(api.NewEmitter()).Generate(context.Background())
		assert.True(t, gen.IsConfigError(err))
	})

	t.Run("missing api emitter", func(t *testing.T) {
		err := gen.NewGenerator(graph).WithModelEmitter(model.NewEmitter()).Generate(context.Background())
		assert.True(t, gen.IsConfigError(err))
	})
}

func TestInvalidSchemaSetWritesNothing(t *testing.T) {
	modelDir := t.TempDir()
	apiDir := t.TempDir()
	cfg, err := gen.NewConfig(
		gen.WithPackage("example.com/blog"),
		gen.WithModelTarget(modelDir),
		gen.WithAPITarget(apiDir),
	)
	require.NoError(t, err)

	// Post references a target that does not exist; the graph never
	// validates and generation is unreachable.
	broken := postSchema()
	broken.Relations[0].Target = "Ghost"
	_, err = gen.NewGraph(cfg, broken)
	require.Error(t, err)
	assert.True(t, gen.IsValidationError(err))

	for _, dir := range []string{modelDir, apiDir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestFingerprint(t *testing.T) {
	cfg, err := gen.NewConfig(gen.WithPackage("example.com/blog"))
	require.NoError(t, err)

	graphA, err := gen.NewGraph(cfg, userSchema(), postSchema())
	require.NoError(t, err)
	graphB, err := gen.NewGraph(cfg, userSchema(), postSchema())
	require.NoError(t, err)

	t.Run("pure function of the IR", func(t *testing.T) {
		a, err := gen.Fingerprint(graphA.EntityByName("User"))
		require.NoError(t, err)
		b, err := gen.Fingerprint(graphB.EntityByName("User"))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("changes with the schema", func(t *testing.T) {
		changed := userSchema()
		changed.Fields[1].MaxLength = intPtr(128)
		graphC, err := gen.NewGraph(cfg, changed, postSchema())
		require.NoError(t, err)

		a, err := gen.Fingerprint(graphA.EntityByName("User"))
		require.NoError(t, err)
		c, err := gen.Fingerprint(graphC.EntityByName("User"))
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
	})
}
