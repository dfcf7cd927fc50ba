// Package rest carries the HTTP glue shared by generated CRUD handlers:
// error-to-status mapping, pagination binding and payload validation.
// Handlers stay thin because everything response-shaped lives here.
package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/syssam/crudgen"
)

// validate is shared across handlers; validator.Validate is safe for
// concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// BindError marks a request whose body could not be decoded at all.
// Rendered as 400, unlike validation failures which render as 422.
type BindError struct {
	wrap error
}

// Error returns the error string.
func (e *BindError) Error() string {
	return fmt.Sprintf("crudgen: malformed request body: %v", e.wrap)
}

// Unwrap returns the underlying decode error.
func (e *BindError) Unwrap() error {
	return e.wrap
}

// NewBindError wraps a body decode failure.
func NewBindError(err error) *BindError {
	return &BindError{wrap: err}
}

// IsBind returns true if the error is a BindError.
func IsBind(err error) bool {
	if err == nil {
		return false
	}
	var e *BindError
	return errors.As(err, &e)
}

// ValidationError marks a payload that decoded fine but violated its
// declared constraints.
type ValidationError struct {
	wrap error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("crudgen: invalid payload: %v", e.wrap)
}

// Unwrap returns the underlying validator error.
func (e *ValidationError) Unwrap() error {
	return e.wrap
}

// NewValidationError wraps a constraint violation.
func NewValidationError(err error) *ValidationError {
	return &ValidationError{wrap: err}
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// Validate checks the payload struct against its validate tags.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// RenderError writes the JSON error response for err and aborts the
// request. Status mapping: not-found 404, conflict 409, malformed body
// 400, constraint violation 422, anything else 500 with the detail
// withheld.
func RenderError(c *gin.Context, err error) {
	switch {
	case crudgen.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case crudgen.IsConflict(err):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case IsBind(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case IsValidation(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

// BindPage reads the skip and limit query parameters and clamps them
// into the allowed bounds. Non-integer values are a validation failure.
func BindPage(c *gin.Context) (crudgen.Page, error) {
	var page crudgen.Page
	skip := c.DefaultQuery("skip", "0")
	n, err := strconv.Atoi(skip)
	if err != nil {
		return page, NewValidationError(fmt.Errorf("skip must be an integer, got %q", skip))
	}
	page.Skip = n
	limit := c.DefaultQuery("limit", strconv.Itoa(crudgen.DefaultLimit))
	n, err = strconv.Atoi(limit)
	if err != nil {
		return page, NewValidationError(fmt.Errorf("limit must be an integer, got %q", limit))
	}
	page.Limit = n
	return page.Clamp(), nil
}
