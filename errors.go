package crudgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("crudgen: entity not found")

	// ErrConflict is returned when a write violates a uniqueness
	// constraint at the persistence layer.
	ErrConflict = errors.New("crudgen: constraint conflict")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("crudgen: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("crudgen: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConflictError represents a uniqueness-constraint violation reported by
// the persistence layer. Generated create handlers surface it as an HTTP
// conflict instead of re-validating uniqueness themselves.
type ConflictError struct {
	label string
	msg   string
	wrap  error
}

// Error returns the error string.
func (e *ConflictError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("crudgen: %s conflict: %s", e.label, e.msg)
	}
	return fmt.Sprintf("crudgen: %s conflict", e.label)
}

// Unwrap returns the underlying error.
func (e *ConflictError) Unwrap() error {
	return e.wrap
}

// Is reports whether the target error matches ConflictError.
func (e *ConflictError) Is(err error) bool {
	return err == ErrConflict
}

// Label returns the entity label.
func (e *ConflictError) Label() string {
	return e.label
}

// NewConflictError returns a new ConflictError for the given entity type.
func NewConflictError(label, msg string, wrap error) *ConflictError {
	return &ConflictError{label: label, msg: msg, wrap: wrap}
}

// IsConflict returns true if the error is a ConflictError.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *ConflictError
	return errors.As(err, &e) || errors.Is(err, ErrConflict)
}
