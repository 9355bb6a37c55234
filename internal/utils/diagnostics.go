package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// ParseDiagnosticLevel converts a config string into a level
func ParseDiagnosticLevel(s string) (DiagnosticLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return DiagnosticSilent, nil
	case "error", "quiet":
		return DiagnosticError, nil
	case "warn", "warning":
		return DiagnosticWarn, nil
	case "", "info":
		return DiagnosticInfo, nil
	case "verbose":
		return DiagnosticVerbose, nil
	case "debug":
		return DiagnosticDebug, nil
	default:
		return DiagnosticInfo, fmt.Errorf("unknown diagnostic level %q", s)
	}
}

// DiagnosticSystem provides structured, user-friendly output.
// It is safe for concurrent use; watch mode logs from the watcher goroutine.
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
	progress  string
	started   time.Time
	prefix    string
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// NewBufferedDiagnostics writes everything to w without colors or timestamps
func NewBufferedDiagnostics(level DiagnosticLevel, w io.Writer) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:    level,
		output:   w,
		errorOut: w,
	}
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// SetPrefix tags every leveled message, used for pass identifiers
func (d *DiagnosticSystem) SetPrefix(prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefix = prefix
}

// Color constants for terminal output
const (
	ColorReset   = "\033[0m"
	ColorBold    = "\033[1m"
	ColorDim     = "\033[2m"
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorGray    = "\033[90m"
)

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", ColorRed, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", ColorYellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", ColorBlue, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", ColorGreen, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", ColorGray, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", ColorMagenta, format, args...)
	}
}

// StartProgress announces a step; EndProgress closes it with its outcome
func (d *DiagnosticSystem) StartProgress(step string) {
	d.mu.Lock()
	d.progress = step
	d.started = time.Now()
	d.mu.Unlock()

	if d.level >= DiagnosticVerbose {
		d.writeLine(d.output, fmt.Sprintf("%s...", step))
	}
}

// EndProgress reports the outcome of the step started with StartProgress
func (d *DiagnosticSystem) EndProgress(ok bool, detail string) {
	d.mu.Lock()
	step := d.progress
	elapsed := time.Since(d.started)
	d.progress = ""
	d.mu.Unlock()

	if step == "" || d.level < DiagnosticInfo {
		return
	}

	mark := "✓"
	if !ok {
		mark = "✗"
	}
	if d.useColors {
		if ok {
			mark = color.GreenString(mark)
		} else {
			mark = color.RedString(mark)
		}
	}

	line := fmt.Sprintf("%s %s", mark, step)
	if detail != "" {
		line += " (" + detail + ")"
	}
	if d.showTime {
		line += fmt.Sprintf(" [%s]", elapsed.Round(time.Millisecond))
	}
	d.writeLine(d.output, line)
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		if d.useColors {
			title = color.New(color.FgCyan, color.Bold).Sprint(title)
		}
		d.writeLine(d.output, title)
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		if d.useColors {
			title = color.BlueString(title)
		}
		d.writeLine(d.output, "\n"+title+":")
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeLine(d.output, "- "+fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary outputs a final summary with statistics, keys sorted for stable output
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\n" + title + "\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "   %s: %v\n", key, stats[key])
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.output, b.String())
}

// writeLine writes an unleveled line honoring indentation
func (d *DiagnosticSystem) writeLine(writer io.Writer, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(writer, "%s%s\n", d.getIndent(), line)
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level, colorCode, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	d.mu.Lock()
	defer d.mu.Unlock()

	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	if d.useColors {
		output.WriteString(fmt.Sprintf("%s[%s]%s ", colorCode, level, ColorReset))
	} else {
		output.WriteString(fmt.Sprintf("[%s] ", level))
	}

	if d.prefix != "" {
		output.WriteString(d.prefix)
		output.WriteString(" ")
	}

	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

// getIndent returns the current indentation string; callers hold d.mu
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
