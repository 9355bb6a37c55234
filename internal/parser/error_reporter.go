package parser

import (
	stderrors "errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/toyz/mockable/internal/annotations"
	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/models"
)

// ErrorReporter turns discovery problems into GeneratorErrors with suggestions
type ErrorReporter struct{}

// NewErrorReporter creates a new error reporter
func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{}
}

// ReportAnnotationError describes a marker that failed to parse or validate
func (r *ErrorReporter) ReportAnnotationError(typeName string, pos token.Position, err error) error {
	errType := models.ErrorTypeValidation
	var suggestions []string

	var multi *annotations.MultipleValidationErrors
	var annErr annotations.AnnotationError
	switch {
	case stderrors.As(err, &multi):
		for _, e := range multi.Errors {
			var inner annotations.AnnotationError
			if !stderrors.As(e, &inner) {
				continue
			}
			if loc := inner.Location(); loc.Line > 0 {
				pos.Line = loc.Line
			}
			if hint := inner.Suggestion(); hint != "" {
				suggestions = append(suggestions, hint)
			}
		}
	case stderrors.As(err, &annErr):
		if annErr.Code() == annotations.SyntaxErrorCode {
			errType = models.ErrorTypeAnnotationSyntax
		}
		if loc := annErr.Location(); loc.Line > 0 {
			pos.Line = loc.Line
		}
		if hint := annErr.Suggestion(); hint != "" {
			suggestions = append(suggestions, hint)
		}
	}

	suggestions = append(suggestions, "Valid forms:")
	for _, example := range annotations.StaticAnnotationSchema.Examples {
		suggestions = append(suggestions, "  "+example)
	}

	return &models.GeneratorError{
		Type:        errType,
		File:        pos.Filename,
		Line:        pos.Line,
		Message:     fmt.Sprintf("invalid marker on type '%s': %v", typeName, err),
		Cause:       err,
		Suggestions: suggestions,
		Context: map[string]interface{}{
			"type_name": typeName,
		},
	}
}

// ReportDuplicateMarker describes a type declaration carrying more than one marker
func (r *ErrorReporter) ReportDuplicateMarker(typeName string, pos token.Position, lines []int) error {
	at := make([]string, len(lines))
	for i, line := range lines {
		at[i] = fmt.Sprintf("line %d", line)
	}

	return &models.GeneratorError{
		Type:    models.ErrorTypeValidation,
		File:    pos.Filename,
		Line:    pos.Line,
		Message: fmt.Sprintf("type '%s' carries %d //mockable::static markers; only one is allowed", typeName, len(lines)),
		Suggestions: []string{
			"Keep a single marker per declaration",
			"Declare a separate anchor type for each additional target",
			"Markers found at: " + strings.Join(at, ", "),
		},
		Context: map[string]interface{}{
			"type_name": typeName,
			"lines":     lines,
		},
	}
}

// ReportMarkerOnFunc describes a marker attached to a function instead of a type
func (r *ErrorReporter) ReportMarkerOnFunc(funcName string, pos token.Position) error {
	return &models.GeneratorError{
		Type:    models.ErrorTypeValidation,
		File:    pos.Filename,
		Line:    pos.Line,
		Message: fmt.Sprintf("marker on function '%s' is ignored; only type declarations can carry //mockable::static", funcName),
		Suggestions: []string{
			"Move the marker to a type declaration, for example:",
			"  //mockable::static -Target=<import path>",
			"  type Deps struct{}",
		},
		Context: map[string]interface{}{
			"function_name": funcName,
		},
	}
}

// ReportUnresolvedTarget describes a marker whose target could not be loaded
func (r *ErrorReporter) ReportUnresolvedTarget(target models.GenerationTarget, err error) error {
	suggestions := []string{
		fmt.Sprintf("Check that '%s' is a valid import path reachable from %s", target.PkgPath, target.AnnotatedDir),
		"Run 'go mod tidy' so the package is listed in go.mod",
	}
	if target.TypeName != "" {
		suggestions = append(suggestions, fmt.Sprintf("-Type must name a type declared in %s", target.PkgPath))
	}

	var targetErr *mockerrors.TargetError
	if stderrors.As(err, &targetErr) {
		suggestions = append(suggestions, targetErr.Suggestions()...)
	}

	return &models.GeneratorError{
		Type:        models.ErrorTypeTargetResolution,
		File:        target.Position.Filename,
		Line:        target.Position.Line,
		Message:     fmt.Sprintf("cannot resolve target '%s' of type '%s', declaration skipped", target.Identity(), target.AnnotatedType),
		Cause:       err,
		Suggestions: suggestions,
		Context: map[string]interface{}{
			"target":         target.Identity(),
			"annotated_type": target.AnnotatedType,
		},
	}
}
