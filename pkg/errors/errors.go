// Package errors provides custom error types for the pointage system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the pointage system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence indicates that the backing table provider failed
	ErrPersistence = errors.New("persistence failure")

	// ErrSchema indicates that a loaded table is missing required columns
	ErrSchema = errors.New("schema mismatch")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string // "employee", "entry", "service"
	Name     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{Resource: resource, Name: name}
}

// AlreadyExistsError represents a duplicate record
type AlreadyExistsError struct {
	Resource string
	Name     string
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Name)
}

// Is implements errors.Is support
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(resource, name string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, Name: name}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// PersistenceError represents a failure in the backing table provider
type PersistenceError struct {
	Operation string // "read", "write", "append", "open"
	Table     string
	Err       error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("persistence error during %s of table %s: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("persistence error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(operation, table string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Table: table, Err: err}
}

// SchemaError indicates a loaded table is missing required columns.
// Raised at load time so callers fail fast instead of silently reading
// empty or partial data.
type SchemaError struct {
	Table   string
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(table string, missing []string) *SchemaError {
	return &SchemaError{Table: table, Missing: missing}
}

// PropagationError represents a rename-history sync failure. It is logged
// by the coordinator and reported in its status, never escalated as the
// failure of the roster operation that triggered it.
type PropagationError struct {
	OldName string
	NewName string
	Err     error
}

// Error implements the error interface
func (e *PropagationError) Error() string {
	return fmt.Sprintf("rename propagation %q -> %q failed: %v", e.OldName, e.NewName, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PropagationError) Unwrap() error {
	return e.Err
}

// NewPropagationError creates a new PropagationError
func NewPropagationError(oldName, newName string, err error) *PropagationError {
	return &PropagationError{OldName: oldName, NewName: newName, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPersistence checks if an error came from the table provider
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsSchema checks if an error is a schema mismatch
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapPersistence wraps an error as a PersistenceError
func WrapPersistence(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return NewPersistenceError(operation, table, err)
}
