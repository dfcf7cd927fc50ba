package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found maps to 404", crudgen.NewNotFoundErrorWithID("users", 7), http.StatusNotFound},
		{"conflict maps to 409", crudgen.NewConflictError("users", "duplicate email", nil), http.StatusConflict},
		{"bind failure maps to 400", NewBindError(errors.New("unexpected EOF")), http.StatusBadRequest},
		{"validation failure maps to 422", NewValidationError(errors.New("email is required")), http.StatusUnprocessableEntity},
		{"anything else maps to 500", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext("/users")
			RenderError(c, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), "detail")
		})
	}

	t.Run("internal errors do not leak the cause", func(t *testing.T) {
		c, w := testContext("/users")
		RenderError(c, errors.New("password=hunter2"))
		assert.NotContains(t, w.Body.String(), "hunter2")
	})
}

func TestBindPage(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, _ := testContext("/users")
		page, err := BindPage(c)
		require.NoError(t, err)
		assert.Equal(t, crudgen.Page{Skip: 0, Limit: crudgen.DefaultLimit}, page)
	})

	t.Run("explicit values", func(t *testing.T) {
		c, _ := testContext("/users?skip=20&limit=10")
		page, err := BindPage(c)
		require.NoError(t, err)
		assert.Equal(t, crudgen.Page{Skip: 20, Limit: 10}, page)
	})

	t.Run("clamps out-of-bounds values", func(t *testing.T) {
		c, _ := testContext("/users?skip=-5&limit=99999")
		page, err := BindPage(c)
		require.NoError(t, err)
		assert.Equal(t, 0, page.Skip)
		assert.Equal(t, crudgen.MaxLimit, page.Limit)
	})

	t.Run("non-integer skip fails validation", func(t *testing.T) {
		c, _ := testContext("/users?skip=many")
		_, err := BindPage(c)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("non-integer limit fails validation", func(t *testing.T) {
		c, _ := testContext("/users?limit=all")
		_, err := BindPage(c)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestValidate(t *testing.T) {
	type payload struct {
		Email string `validate:"required,max=10"`
	}

	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, Validate(&payload{Email: "a@b.c"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := Validate(&payload{})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("max length exceeded", func(t *testing.T) {
		err := Validate(&payload{Email: "much-too-long@example.com"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}
