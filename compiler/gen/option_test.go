package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, DefaultHeader, c.Header)
		assert.Greater(t, c.Workers, 0)
	})

	t.Run("options apply in order", func(t *testing.T) {
		c, err := NewConfig(
			WithSchemaDir("schema"),
			WithModelTarget("out/models"),
			WithAPITarget("out/api"),
			WithPackage("example.com/blog"),
			WithHeader("custom header"),
			WithWorkers(4),
		)
		require.NoError(t, err)
		assert.Equal(t, "schema", c.SchemaDir)
		assert.Equal(t, "out/models", c.ModelTarget)
		assert.Equal(t, "out/api", c.APITarget)
		assert.Equal(t, "custom header", c.Header)
		assert.Equal(t, 4, c.Workers)
	})

	t.Run("derived package paths", func(t *testing.T) {
		c, err := NewConfig(WithPackage("example.com/blog"))
		require.NoError(t, err)
		assert.Equal(t, "example.com/blog/models", c.ModelPackage())
		assert.Equal(t, "example.com/blog/api", c.APIPackage())
	})

	tests := []struct {
		name string
		opt  Option
	}{
		{"empty schema dir", WithSchemaDir("")},
		{"empty model target", WithModelTarget("")},
		{"empty api target", WithAPITarget("")},
		{"empty package", WithPackage("")},
		{"non-positive workers", WithWorkers(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			_, err := NewConfig(tt.opt)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrMissingConfig)
		})
	}
}
