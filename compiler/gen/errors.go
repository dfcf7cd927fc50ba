package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrParseFailed indicates a schema document could not be parsed
	// into the IR.
	ErrParseFailed = errors.New("crudgen: parse failed")
	// ErrValidationFailed indicates the schema set failed validation.
	ErrValidationFailed = errors.New("crudgen: validation failed")
	// ErrGenerationFailed indicates an artifact could not be written.
	ErrGenerationFailed = errors.New("crudgen: code generation failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("crudgen: missing configuration")
)

// ParseError reports a malformed schema document: an unknown type token
// or a broken field/relation block. It carries the coordinates needed to
// locate the offending declaration.
type ParseError struct {
	Entity   string
	Field    string
	Relation string // target name of the relation block, if applicable
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: parse error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Relation != "" {
		b.WriteString(" relation ")
		b.WriteString(e.Relation)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}

// NewParseError creates a new ParseError.
func NewParseError(entity, field, message string, cause error) *ParseError {
	return &ParseError{Entity: entity, Field: field, Message: message, Cause: cause}
}

// ValidationError is one diagnostic produced by the validator. A run
// accumulates every diagnostic before failing; see ValidationErrors.
type ValidationError struct {
	Entity   string
	Field    string
	Relation string // relation kind, when the diagnostic concerns one
	Target   string // relation target, when the diagnostic concerns one
	Message  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: validation error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Relation != "" {
		b.WriteString(" relation ")
		b.WriteString(e.Relation)
	}
	if e.Target != "" {
		b.WriteString(" -> ")
		b.WriteString(e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a new ValidationError.
func NewValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Message: message}
}

// ValidationErrors aggregates every diagnostic of a validation run into
// one report. Validation never short-circuits: a run either returns nil
// or the complete list.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "crudgen: validation failed with %d diagnostic(s):", len(e))
	for _, d := range e {
		b.WriteString("\n\t")
		b.WriteString(d.Error())
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for validation failures.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap exposes the individual diagnostics to errors.Is/errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, d := range e {
		errs[i] = d
	}
	return errs
}

// GenerationError represents an artifact write or format failure. It is
// fatal for the run; artifacts already flushed are not rolled back.
type GenerationError struct {
	Phase   string // "model", "api", "manifest"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Cause: cause}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("crudgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("crudgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether the error carries validation diagnostics.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
