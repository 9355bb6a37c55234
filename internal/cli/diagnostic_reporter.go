package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	err     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stdout and stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterWithWriters(verbose, os.Stdout, os.Stderr)
}

// NewDiagnosticReporterWithWriters creates a reporter writing to the given writers
func NewDiagnosticReporterWithWriters(verbose bool, out, err io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out, err: err}
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(r.err, "! ")
	fmt.Fprintf(r.err, "%s\n", message)
}

// ReportProblem prints a problem that did not stop the pass. Suggestions are
// only shown in verbose mode.
func (r *DiagnosticReporter) ReportProblem(problem error) {
	r.ReportWarning(problem.Error())
	if !r.verbose {
		return
	}

	var genErr *models.GeneratorError
	var mockErr mockerrors.MockableError
	var suggestions []string
	switch {
	case stderrors.As(problem, &genErr):
		if genErr.Cause != nil {
			fmt.Fprintf(r.err, "    cause: %v\n", genErr.Cause)
		}
		suggestions = genErr.Suggestions
	case stderrors.As(problem, &mockErr):
		suggestions = mockErr.Suggestions()
	}
	for _, suggestion := range suggestions {
		fmt.Fprintf(r.err, "    %s\n", suggestion)
	}
}

// ReportError provides comprehensive error reporting for a failed pass
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.err, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.err, "=============================\n\n")

	var genErr *models.GeneratorError
	var mockErr mockerrors.MockableError
	switch {
	case stderrors.As(err, &genErr):
		r.reportGeneratorError(genErr)
	case stderrors.As(err, &mockErr):
		r.reportMockableError(mockErr)
	default:
		r.reportBasicError(err)
	}

	fmt.Fprintf(r.err, "\n")
}

func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	r.printErrorHeader(genErr.Type)

	fmt.Fprintf(r.err, "Message: %s\n\n", genErr.Message)

	if r.verbose && genErr.Cause != nil {
		fmt.Fprintf(r.err, "Underlying cause: %s\n\n", genErr.Cause.Error())
	}

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.err, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.err, "File: %s\n\n", genErr.File)
		}
	}

	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}

	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}

	r.printAdditionalHelp(genErr.Type)

	if r.verbose {
		r.printErrorChain(genErr.Cause)
	}
}

func (r *DiagnosticReporter) reportMockableError(err mockerrors.MockableError) {
	fmt.Fprintf(r.err, "Type: %s\n", err.ErrorCode())
	fmt.Fprintf(r.err, "%s\n\n", strings.Repeat("-", len(err.ErrorCode().String())+6))
	fmt.Fprintf(r.err, "Message: %s\n\n", err.Error())

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.err, "Location: %s\n\n", loc)
	}
	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(stderrors.Unwrap(err))
	}
}

func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.err, "Message: %s\n\n", err.Error())

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "go.mod") || strings.Contains(msg, "module"):
		fmt.Fprintf(r.err, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.err, "Common solutions:\n")
		fmt.Fprintf(r.err, "  - Check your go.mod file\n")
		fmt.Fprintf(r.err, "  - Run from inside the module or pass --module\n\n")
	case strings.Contains(msg, "no such file") || strings.Contains(msg, "directory"):
		fmt.Fprintf(r.err, "This appears to be a directory-related issue.\n")
		fmt.Fprintf(r.err, "Common solutions:\n")
		fmt.Fprintf(r.err, "  - Check that the directories exist\n")
		fmt.Fprintf(r.err, "  - Use './...' to scan recursively\n\n")
	}
}

func (r *DiagnosticReporter) printErrorHeader(errorType models.ErrorType) {
	var title string
	switch errorType {
	case models.ErrorTypeAnnotationSyntax:
		title = "Annotation Syntax Error"
	case models.ErrorTypeValidation:
		title = "Validation Error"
	case models.ErrorTypeGeneration:
		title = "Code Generation Error"
	case models.ErrorTypeFileSystem:
		title = "File System Error"
	case models.ErrorTypeTargetResolution:
		title = "Target Resolution Error"
	case models.ErrorTypeConfiguration:
		title = "Configuration Error"
	default:
		title = "Unknown Error"
	}

	fmt.Fprintf(r.err, "Type: %s\n", title)
	fmt.Fprintf(r.err, "%s\n\n", strings.Repeat("-", len(title)+6))
}

func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.err, "Context:\n")

	important := []string{"type_name", "function_name", "target", "package_directory"}
	printed := make(map[string]bool)
	for _, key := range important {
		if value, ok := context[key]; ok {
			fmt.Fprintf(r.err, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.err, "   %s: %v\n", formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.err, "\n")
}

func formatContextKey(key string) string {
	switch key {
	case "type_name":
		return "Type"
	case "function_name":
		return "Function"
	case "package_directory":
		return "Package"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.err, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.err, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.err, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.err, "\n")
}

func (r *DiagnosticReporter) printAdditionalHelp(errorType models.ErrorType) {
	switch errorType {
	case models.ErrorTypeAnnotationSyntax, models.ErrorTypeValidation:
		fmt.Fprintf(r.err, "Marker Syntax Help:\n")
		fmt.Fprintf(r.err, "  - Markers must start with //mockable::static\n")
		fmt.Fprintf(r.err, "  - Markers go on type declarations, one per type\n")
		fmt.Fprintf(r.err, "  - Parameters use the -Name=value form\n\n")

	case models.ErrorTypeTargetResolution:
		fmt.Fprintf(r.err, "Target Requirements:\n")
		fmt.Fprintf(r.err, "  - -Target must be an import path the annotated package can import\n")
		fmt.Fprintf(r.err, "  - Run 'go mod tidy' so the target module is available\n")
		fmt.Fprintf(r.err, "  - -Type must name an exported type of the target package\n\n")
	}

	fmt.Fprintf(r.err, "For more help:\n")
	fmt.Fprintf(r.err, "  - Run with --verbose for more detailed output\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.err, "\nError Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.err, "    %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
	}
}

// ReportSuccess prints the summary of a completed pass
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nPass %s completed in %v\n", summary.PassID, summary.Duration.Round(time.Millisecond))

	fmt.Fprintf(r.out, "Processed %d packages, found %d markers\n", summary.PackagesProcessed, summary.MarkersFound)
	fmt.Fprintf(r.out, "Generated %d wrappers with %d methods\n", summary.UnitsGenerated, summary.MethodsWrapped)

	if summary.FunctionsSkipped > 0 {
		fmt.Fprintf(r.out, "Skipped %d functions that cannot be wrapped\n", summary.FunctionsSkipped)
	}
	if summary.Problems > 0 {
		color.New(color.FgYellow).Fprintf(r.out, "Reported %d problems\n", summary.Problems)
	}

	if summary.SkippedPackages.Count() > 0 {
		fmt.Fprintf(r.out, "\nSkipped packages:\n")
		for _, skipped := range summary.SkippedPackages.Errors {
			fmt.Fprintf(r.out, "  - %v\n", skipped.Context()["package_directory"])
		}
	}
	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nWritten files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.RemovedFiles) > 0 {
		fmt.Fprintf(r.out, "\nRemoved files:\n")
		for _, file := range summary.RemovedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}

// GenerationSummary describes one pass
type GenerationSummary struct {
	PassID            string
	Generation        uint64
	PackagesProcessed int
	MarkersFound      int
	UnitsGenerated    int
	MethodsWrapped    int
	FunctionsSkipped  int
	Problems          int
	FilesUnchanged    int
	SkippedPackages   *mockerrors.MultipleErrors // packages whose sources could not be read
	GeneratedFiles    []string                   // written during the pass
	RemovedFiles      []string                   // stale files of packages that lost every wrapper
	Duration          time.Duration
}

// Stats returns the summary in the shape DiagnosticSystem.Summary prints
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Packages processed": s.PackagesProcessed,
		"Markers found":      s.MarkersFound,
		"Wrappers generated": s.UnitsGenerated,
		"Methods wrapped":    s.MethodsWrapped,
		"Functions skipped":  s.FunctionsSkipped,
		"Packages skipped":   s.SkippedPackages.Count(),
		"Problems":           s.Problems,
		"Files written":      len(s.GeneratedFiles),
		"Files unchanged":    s.FilesUnchanged,
		"Files removed":      len(s.RemovedFiles),
	}
}
