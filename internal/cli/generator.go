package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/generator"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/parser"
	"github.com/toyz/mockable/internal/utils"
	"github.com/toyz/mockable/internal/walker"
)

// Generator runs generation passes over the configured directories
type Generator struct {
	config      Config
	processor   *utils.FileProcessor
	scanner     *DirectoryScanner
	modules     *ModuleResolver
	discovery   parser.MarkerDiscovery
	emitter     *generator.Generator
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	progress    ProgressReporter

	mu      sync.Mutex // one pass at a time
	summary GenerationSummary
}

// NewGenerator creates a generator for cfg. Caches live as long as the
// generator; every pass starts a new cache generation.
func NewGenerator(cfg Config, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	if reporter == nil {
		reporter = NewDiagnosticReporter(cfg.Verbose)
	}

	processor := utils.NewFileProcessor().WithBuildTags(cfg.Tags)
	processor.GetFileReader().WithDiagnostics(diagnostics)
	resolver := parser.NewPackageResolver(processor.GetFileReader(), walker.Options{Tags: cfg.Tags})

	return &Generator{
		config:      cfg,
		processor:   processor,
		scanner:     NewDirectoryScanner(processor),
		modules:     NewModuleResolver(processor.GetFileReader(), cfg.ModuleName),
		discovery:   parser.NewParser(processor, resolver, diagnostics),
		emitter:     generator.NewGenerator().WithFileName(cfg.Output),
		reporter:    reporter,
		diagnostics: diagnostics,
		progress:    noProgress{},
	}
}

// WithDiscovery replaces marker discovery
func (g *Generator) WithDiscovery(discovery parser.MarkerDiscovery) *Generator {
	g.discovery = discovery
	return g
}

// WithProgress reports the packages of every pass to progress
func (g *Generator) WithProgress(progress ProgressReporter) *Generator {
	if progress == nil {
		progress = noProgress{}
	}
	g.progress = progress
	return g
}

// Summary returns the summary of the last completed pass
func (g *Generator) Summary() GenerationSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summary
}

// Run executes one pass. Problems with single markers and packages that do
// not parse are reported and the pass continues; a failed directory scan, a
// missing go.mod, generation failures and unwritable files end it with an
// error. A cancelled pass
// returns the context error and keeps the previous summary.
func (g *Generator) Run(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	summary := GenerationSummary{PassID: uuid.NewString()[:8]}
	summary.Generation = g.discovery.BeginPass()

	g.diagnostics.SetPrefix(summary.PassID)
	defer g.diagnostics.SetPrefix("")
	g.diagnostics.Verbose("pass started, cache generation %d", summary.Generation)

	g.diagnostics.StartProgress("Scanning directories for Go packages")
	dirs, err := g.scanner.ScanDirectories(g.config.Directories)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to scan directories: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check that the specified directories exist",
				"Ensure you have read permissions for the directories",
			},
			Context: map[string]interface{}{"directories": g.config.Directories},
		}
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d packages", len(dirs)))

	g.progress.OnPassStart(len(dirs))
	defer g.progress.OnPassDone()
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.processPackage(ctx, dir, &summary); err != nil {
			return err
		}
		g.progress.OnPackageDone(dir)
	}

	summary.Duration = time.Since(start)
	g.summary = summary
	return nil
}

func (g *Generator) processPackage(ctx context.Context, dir string, summary *GenerationSummary) error {
	importPath, err := g.modules.ImportPath(dir)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeConfiguration,
			Message: fmt.Sprintf("Failed to resolve import path of %s: %v", dir, err),
			Cause:   err,
			Suggestions: []string{
				"Check your go.mod file exists and is valid",
				"Try specifying --module flag explicitly",
			},
			Context: map[string]interface{}{"package_directory": dir},
		}
	}

	g.diagnostics.Debug("parsing %s (%s)", dir, importPath)
	result, err := g.discovery.ParsePackage(ctx, dir, importPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		g.skipPackage(dir, importPath, err, summary)
		return nil
	}

	summary.PackagesProcessed++
	summary.MarkersFound += result.Markers
	summary.FunctionsSkipped += result.Skipped

	units, conflicts := generator.CheckNames(result.Units, result.Declared)
	for _, problem := range append(result.Problems, conflicts...) {
		g.reporter.ReportProblem(problem)
		summary.Problems++
	}

	artifact, err := g.emitter.Emit(generator.Request{
		PackageName: result.PackageName,
		PkgPath:     importPath,
		Dir:         dir,
		Units:       units,
		Declared:    result.Declared,
	})
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			Message: fmt.Sprintf("Failed to generate wrappers for package %s: %v", result.PackageName, err),
			Cause:   err,
			Context: map[string]interface{}{
				"package_directory": dir,
				"import_path":       importPath,
			},
		}
	}

	if artifact == nil {
		removed, err := g.processor.RemoveGeneratedFile(dir, g.emitter.FileName())
		if err != nil {
			return fileError(dir, err)
		}
		if removed {
			path := filepath.Join(dir, g.emitter.FileName())
			g.diagnostics.Verbose("removed stale %s", path)
			summary.RemovedFiles = append(summary.RemovedFiles, path)
		}
		return nil
	}

	summary.UnitsGenerated += len(artifact.Units)
	summary.MethodsWrapped += artifact.MethodCount()

	written, err := utils.WriteFileIfChanged(artifact.Path(), artifact.Source)
	if err != nil {
		return fileError(dir, err)
	}
	if !written {
		summary.FilesUnchanged++
		g.diagnostics.Debug("%s is up to date", artifact.Path())
		return nil
	}

	g.diagnostics.Verbose("wrote %s (%d wrappers)", artifact.Path(), len(artifact.Units))
	summary.GeneratedFiles = append(summary.GeneratedFiles, artifact.Path())
	return nil
}

// skipPackage records a package whose sources could not be read. Its
// previously generated file is left in place; sources are often only
// transiently broken while being edited.
func (g *Generator) skipPackage(dir, importPath string, cause error, summary *GenerationSummary) {
	code := mockerrors.SyntaxErrorCode
	var mockErr mockerrors.MockableError
	if stderrors.As(cause, &mockErr) && mockErr.ErrorCode() != mockerrors.UnknownErrorCode {
		code = mockErr.ErrorCode()
	}

	skipped := mockerrors.Wrapf(code, cause, "skipped package %s", importPath).
		WithContext("package_directory", dir).
		WithSuggestions(
			"Check for syntax errors in Go files",
			"Ensure all files of the directory declare the same package, or exclude helpers with a //go:build line",
		)

	mockerrors.AddToMultiple(&summary.SkippedPackages, skipped)
	g.reporter.ReportProblem(skipped)
	summary.Problems++
	g.diagnostics.Verbose("skipped %s: %v", dir, cause)
}

func fileError(dir string, err error) error {
	return &models.GeneratorError{
		Type:    models.ErrorTypeFileSystem,
		Message: fmt.Sprintf("Failed to update generated file in %s: %v", dir, err),
		Cause:   err,
		Suggestions: []string{
			"Check write permissions for the target directory",
		},
		Context: map[string]interface{}{"package_directory": dir},
	}
}
