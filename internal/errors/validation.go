package errors

import "fmt"

// SyntaxError represents a source file that could not be parsed
type SyntaxError struct {
	*BaseError
}

// TargetError represents a marker whose target could not be resolved
type TargetError struct {
	*BaseError
	Target string // import path or import path + type
}

// NewTargetError creates a target resolution error
func NewTargetError(target, reason string) *TargetError {
	return &TargetError{
		BaseError: New(TargetResolutionErrorCode, fmt.Sprintf("cannot resolve target '%s': %s", target, reason)),
		Target:    target,
	}
}

// WithCause adds an underlying error cause
func (e *TargetError) WithCause(cause error) *TargetError {
	e.BaseError.WithCause(cause)
	return e
}

// GenerationError represents an error while producing an artifact
type GenerationError struct {
	*BaseError
	GenerationType string // what was being generated
	TargetFile     string // file being generated
	Stage          string // stage of generation
}

// WithStage sets the generation stage
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	return e
}
