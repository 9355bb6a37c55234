package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/mockable/internal/cli"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		clean      bool
	)
	defaults := cli.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "mockable [flags] <directory-paths...>",
		Short: "Generate mockable wrappers around package-level functions",
		Long: `mockable scans Go packages for //mockable::static markers and writes
an interface plus a wrapper struct for every marked type, so code that
calls package-level functions can depend on something it can replace in tests.

  //mockable::static                          wraps the functions associated with the type
  //mockable::static -Target=os -Include=Read* wraps the functions of another package

Directory patterns:
  ./...              current directory and all subdirectories
  ./internal/...     internal directory and all its subdirectories
  ./pkg/repo         only the given directory`,
		Example: `  mockable ./...
  mockable --verbose ./internal/...
  mockable --module github.com/myorg/myapp ./...
  mockable --watch ./...
  mockable --clean ./...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			if len(args) > 0 {
				cfg.Directories = args
			}
			if len(cfg.Directories) == 0 {
				err := fmt.Errorf("at least one directory path is required")
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
				cmd.Usage()
				return err
			}

			diagnostics := newDiagnostics(cfg.DiagnosticLevel(), cmd.OutOrStdout())
			reporter := cli.NewDiagnosticReporterWithWriters(cfg.Verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())

			switch {
			case clean:
				return runClean(cfg, diagnostics)
			case cfg.Watch:
				return runWatch(cmd.Context(), cfg, diagnostics, reporter)
			default:
				generator := cli.NewGenerator(cfg, diagnostics, reporter)
				if cfg.DiagnosticLevel() == utils.DiagnosticInfo {
					generator.WithProgress(cli.NewBarProgress(cmd.ErrOrStderr()))
				}
				return runOnce(cmd.Context(), cfg, generator, diagnostics, reporter)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default is ./"+cli.ConfigFileName+".yaml)")
	flags.String("module", "", "custom module name for imports (defaults to the go.mod module)")
	flags.String("output", defaults.Output, "name of the generated file in each package")
	flags.StringSlice("tags", nil, "build tags used when loading marker targets")
	flags.BoolP("verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "only show errors")
	flags.String("level", "", "diagnostic level: silent, error, warn, info, verbose or debug")
	flags.BoolP("watch", "w", false, "regenerate whenever Go sources change")
	flags.Duration("debounce", defaults.Debounce, "quiet period before watch mode regenerates")
	flags.BoolVar(&clean, "clean", false, "delete generated files instead of generating them")

	return cmd
}

func newDiagnostics(level utils.DiagnosticLevel, out io.Writer) *utils.DiagnosticSystem {
	if out == os.Stdout {
		return utils.NewDiagnosticSystem(level)
	}
	return utils.NewBufferedDiagnostics(level, out)
}

func runClean(cfg cli.Config, diagnostics *utils.DiagnosticSystem) error {
	diagnostics.StartProgress("Cleaning generated files")
	removed, err := cli.NewCleaner(nil, cfg.Output).CleanGeneratedFiles(cfg.Directories)
	if err != nil {
		diagnostics.EndProgress(false, "")
		diagnostics.Error("Clean operation failed: %v", err)
		return err
	}
	diagnostics.EndProgress(true, fmt.Sprintf("%d files", len(removed)))

	if len(removed) > 0 {
		diagnostics.Subsection("Removed files")
	}
	diagnostics.Indent()
	for _, file := range removed {
		diagnostics.List("%s", file)
	}
	diagnostics.Unindent()
	diagnostics.Success("All %s files have been removed", cfg.Output)
	return nil
}

func runOnce(ctx context.Context, cfg cli.Config, generator *cli.Generator, diagnostics *utils.DiagnosticSystem, reporter *cli.DiagnosticReporter) error {
	if cfg.Verbose {
		diagnostics.Section("Configuration")
		diagnostics.Indent()
		diagnostics.List("Target directories: %s", strings.Join(cfg.Directories, ", "))
		if cfg.ModuleName != "" {
			diagnostics.List("Custom module: %s", cfg.ModuleName)
		}
		if cfg.Output != models.DefaultOutputFile {
			diagnostics.List("Output file: %s", cfg.Output)
		}
		if len(cfg.Tags) > 0 {
			diagnostics.List("Build tags: %s", strings.Join(cfg.Tags, ","))
		}
		diagnostics.Unindent()
	}

	if err := generator.Run(ctx); err != nil {
		reporter.ReportError(err)
		return err
	}

	summary := generator.Summary()
	if cfg.Verbose {
		reporter.ReportSuccess(summary)
	}
	diagnostics.Summary("Generation Complete!", summary.Stats())
	return nil
}

func runWatch(ctx context.Context, cfg cli.Config, diagnostics *utils.DiagnosticSystem, reporter *cli.DiagnosticReporter) error {
	roots, err := cli.Roots(cfg.Directories)
	if err != nil {
		return err
	}
	watcher, err := cli.NewWatcher(roots, cfg.Debounce, diagnostics)
	if err != nil {
		diagnostics.Error("Cannot start watching: %v", err)
		return err
	}

	generator := cli.NewGenerator(cfg, diagnostics, reporter)
	diagnostics.Info("Watching %s (ctrl-c to stop)", strings.Join(roots, ", "))

	return watcher.Run(ctx, func(ctx context.Context) error {
		if err := generator.Run(ctx); err != nil {
			if ctx.Err() == nil {
				reporter.ReportError(err)
			}
			return err
		}
		summary := generator.Summary()
		diagnostics.Success("Pass %s: %d wrappers, %d files written, %d unchanged, %d removed",
			summary.PassID, summary.UnitsGenerated, len(summary.GeneratedFiles), summary.FilesUnchanged, len(summary.RemovedFiles))
		return nil
	})
}

func printError(w io.Writer, err error) {
	cli.NewDiagnosticReporterWithWriters(false, io.Discard, w).ReportError(err)
}
