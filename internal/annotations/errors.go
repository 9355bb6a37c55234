package annotations

import (
	"fmt"
	"strings"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Expected  string
	Actual    string
	Loc       SourceLocation
	Hint      string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: parameter '%s' is invalid: expected %s, got %s", e.Loc, e.Parameter, e.Expected, e.Actual)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a marker that does not match the grammar
type SyntaxError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a violated cross-parameter rule
type SchemaError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Loc, e.Msg)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError is returned when a schema cannot be registered
type RegistrationError struct {
	Type AnnotationType
	Msg  string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register annotation %s: %s", e.Type, e.Msg)
}

func (e *RegistrationError) Location() SourceLocation { return SourceLocation{} }
func (e *RegistrationError) Suggestion() string       { return "" }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleValidationErrors collects every problem found on one annotation
type MultipleValidationErrors struct {
	Errors []error
}

func (e *MultipleValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("multiple validation errors:\n%s", strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleValidationErrors) Unwrap() []error {
	return e.Errors
}

// HasType reports whether any collected error carries the given code
func (e *MultipleValidationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if annErr, ok := err.(AnnotationError); ok && annErr.Code() == code {
			return true
		}
	}
	return false
}
