package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/field"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	c, err := NewConfig(WithPackage("example.com/blog"))
	require.NoError(t, err)
	return c
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestNewEntityDefaults(t *testing.T) {
	t.Run("table derives from the entity name", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name:   "BlogPost",
			Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}},
		})
		require.NoError(t, err)
		assert.Equal(t, "blog_posts", e.Table)
	})

	t.Run("explicit table wins", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name:   "User",
			Table:  "accounts",
			Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}},
		})
		require.NoError(t, err)
		assert.Equal(t, "accounts", e.Table)
	})

	t.Run("timestamps default on", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name:   "User",
			Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}},
		})
		require.NoError(t, err)
		assert.True(t, e.Timestamps)
		require.NotNil(t, e.FieldByName("created_at"))
		require.NotNil(t, e.FieldByName("updated_at"))
		assert.Equal(t, field.TypeDateTime, e.FieldByName("created_at").Type)
		assert.False(t, e.FieldByName("created_at").UserDefined)
	})

	t.Run("timestamps off skips injection", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name:       "Session",
			Timestamps: boolPtr(false),
			Fields:     []*load.Field{{Name: "id", Type: "uuid", Primary: true}},
		})
		require.NoError(t, err)
		assert.Nil(t, e.FieldByName("created_at"))
		assert.Nil(t, e.FieldByName("updated_at"))
	})

	t.Run("soft delete injects a nillable marker", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name:       "Post",
			SoftDelete: true,
			Fields:     []*load.Field{{Name: "id", Type: "integer", Primary: true}},
		})
		require.NoError(t, err)
		marker := e.FieldByName("deleted_at")
		require.NotNil(t, marker)
		assert.True(t, marker.Nillable)
		assert.True(t, marker.SoftDeleteMarker())
	})

	t.Run("user declaration shadows the implicit field with a warning", func(t *testing.T) {
		e, err := NewEntity(testConfig(t), &load.Schema{
			Name: "Event",
			Fields: []*load.Field{
				{Name: "id", Type: "integer", Primary: true},
				{Name: "created_at", Type: "date", Required: true},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, e.FieldByName("created_at"))
		assert.Equal(t, field.TypeDate, e.FieldByName("created_at").Type)
		assert.True(t, e.FieldByName("created_at").UserDefined)
		assert.False(t, e.FieldByName("created_at").OnInsertNow())
		require.Len(t, e.Warnings, 1)
		assert.Contains(t, e.Warnings[0], `"created_at"`)
	})
}

// User-declared columns named like the auto-managed ones stay plain
// fields: no insert or update stamping and no soft-delete semantics.
func TestUserDeclaredTimestampColumnsAreNotAutoManaged(t *testing.T) {
	e, err := NewEntity(testConfig(t), &load.Schema{
		Name:       "Audit",
		Timestamps: boolPtr(false),
		Fields: []*load.Field{
			{Name: "id", Type: "integer", Primary: true},
			{Name: "created_at", Type: "datetime", Required: true},
			{Name: "updated_at", Type: "datetime"},
			{Name: "deleted_at", Type: "datetime"},
		},
	})
	require.NoError(t, err)

	assert.False(t, e.FieldByName("created_at").OnInsertNow())
	assert.False(t, e.FieldByName("updated_at").OnInsertNow())
	assert.False(t, e.FieldByName("updated_at").OnUpdateNow())
	assert.False(t, e.FieldByName("deleted_at").SoftDeleteMarker())
	assert.Empty(t, e.Warnings)

	// The injected fields keep the auto-managed semantics.
	managed, err := NewEntity(testConfig(t), &load.Schema{
		Name:       "Post",
		SoftDelete: true,
		Fields:     []*load.Field{{Name: "id", Type: "integer", Primary: true}},
	})
	require.NoError(t, err)
	assert.True(t, managed.FieldByName("created_at").OnInsertNow())
	assert.True(t, managed.FieldByName("updated_at").OnUpdateNow())
	assert.True(t, managed.FieldByName("deleted_at").SoftDeleteMarker())
}

func TestNewFieldNullability(t *testing.T) {
	tests := []struct {
		name string
		fd   *load.Field
		want bool
	}{
		{"required fields are not nillable", &load.Field{Name: "email", Type: "string", Required: true}, false},
		{"optional fields are nillable", &load.Field{Name: "bio", Type: "text"}, true},
		{"primary fields are never nillable", &load.Field{Name: "id", Type: "integer", Primary: true}, false},
		// The parser records the conflicting combination as declared; the
		// validator rejects it in the graph pass.
		{"explicit nullable kept alongside required", &load.Field{Name: "note", Type: "string", Required: true, Nullable: boolPtr(true)}, true},
		{"explicit non-nullable optional", &load.Field{Name: "slug", Type: "string", Nullable: boolPtr(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntity(testConfig(t), &load.Schema{
				Name:   "Thing",
				Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}, tt.fd},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.FieldByName(tt.fd.Name).Nillable)
		})
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name    string
		schema  *load.Schema
		wantMsg string
	}{
		{
			"empty field name",
			&load.Schema{Name: "User", Fields: []*load.Field{{Type: "string"}}},
			"field has an empty name",
		},
		{
			"missing type",
			&load.Schema{Name: "User", Fields: []*load.Field{{Name: "email"}}},
			"field lacks a type",
		},
		{
			"unknown type token",
			&load.Schema{Name: "User", Fields: []*load.Field{{Name: "email", Type: "varchar"}}},
			`unknown type token "varchar"`,
		},
		{
			"unknown relation kind",
			&load.Schema{
				Name:      "User",
				Fields:    []*load.Field{{Name: "id", Type: "integer", Primary: true}},
				Relations: []*load.Relation{{Type: "has_many", Target: "Post"}},
			},
			`unknown relation kind "has_many"`,
		},
		{
			"relation without target",
			&load.Schema{
				Name:      "User",
				Fields:    []*load.Field{{Name: "id", Type: "integer", Primary: true}},
				Relations: []*load.Relation{{Type: "one_to_many"}},
			},
			"relation lacks a target",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(testConfig(t), tt.schema)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.ErrorIs(t, err, ErrParseFailed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGraphKeepsLoaderOrder(t *testing.T) {
	g, err := NewGraph(testConfig(t),
		&load.Schema{Name: "Post", Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}},
			Relations: []*load.Relation{{Type: "many_to_one", Target: "User"}}},
		&load.Schema{Name: "User", Fields: []*load.Field{{Name: "id", Type: "integer", Primary: true}}},
	)
	require.NoError(t, err)
	require.Len(t, g.Entities, 2)
	assert.Equal(t, "Post", g.Entities[0].Name)
	assert.Equal(t, "User", g.Entities[1].Name)
	// Forward reference resolved even though User is declared later.
	require.NotNil(t, g.Entities[0].Relations[0].Type)
	assert.Equal(t, "User", g.Entities[0].Relations[0].Type.Name)
}

func TestFieldDefaults(t *testing.T) {
	e, err := NewEntity(testConfig(t), &load.Schema{
		Name: "Widget",
		Fields: []*load.Field{
			{Name: "id", Type: "integer", Primary: true},
			{Name: "kind", Type: "string", Default: "basic", MaxLength: intPtr(32)},
			{Name: "count", Type: "integer"},
		},
	})
	require.NoError(t, err)

	kind := e.FieldByName("kind")
	assert.True(t, kind.HasDefault)
	assert.Equal(t, "basic", kind.Default)
	require.NotNil(t, kind.MaxLength)
	assert.Equal(t, 32, *kind.MaxLength)

	count := e.FieldByName("count")
	assert.False(t, count.HasDefault)
	assert.Nil(t, count.MaxLength)
}
