// Package errors provides custom error types for the districtmap system.
// Exceptions are reserved for precondition violations on reference data;
// per-record reconciliation outcomes are modeled as data on the Resolution
// type, never as errors, so one bad record can never abort a batch run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the districtmap system
var (
	// ErrMalformedCodeBook indicates the reference code book is missing
	// required columns. Fatal to a run: no partial resolution is attempted.
	ErrMalformedCodeBook = errors.New("malformed code book")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// CodeBookError represents a fatal defect in the reference code book,
// identifying the source and the column that made it unusable.
type CodeBookError struct {
	Source  string // file or source label the book was loaded from
	Column  string // required column that is missing, if any
	Message string
}

// Error implements the error interface
func (e *CodeBookError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("code book %s: required column %q missing", e.Source, e.Column)
	}
	return fmt.Sprintf("code book %s: %s", e.Source, e.Message)
}

// Is implements errors.Is support
func (e *CodeBookError) Is(target error) bool {
	return target == ErrMalformedCodeBook
}

// NewCodeBookError creates a new CodeBookError for a missing column.
func NewCodeBookError(source, column string) *CodeBookError {
	return &CodeBookError{Source: source, Column: column}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "geonames", etc.
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "rename", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// MergeError represents an error while combining record sets that resolved
// to the same canonical code.
type MergeError struct {
	Code    string // canonical (state, district) code the groups collapse onto
	RawKeys []string
	Err     error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if len(e.RawKeys) > 0 {
		return fmt.Sprintf("merge error for code %s (raw keys %v): %v", e.Code, e.RawKeys, e.Err)
	}
	return fmt.Sprintf("merge error for code %s: %v", e.Code, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(code string, rawKeys []string, err error) *MergeError {
	return &MergeError{Code: code, RawKeys: rawKeys, Err: err}
}

// Helper functions for error checking

// IsMalformedCodeBook checks if an error marks an unusable code book
func IsMalformedCodeBook(err error) bool {
	return errors.Is(err, ErrMalformedCodeBook)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
