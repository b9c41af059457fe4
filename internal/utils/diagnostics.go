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

// String returns the label printed in front of messages of this level
func (l DiagnosticLevel) String() string {
	switch l {
	case DiagnosticError:
		return "ERROR"
	case DiagnosticWarn:
		return "WARN"
	case DiagnosticInfo:
		return "INFO"
	case DiagnosticVerbose:
		return "VERBOSE"
	case DiagnosticDebug:
		return "DEBUG"
	default:
		return "SILENT"
	}
}

// DiagnosticSystem provides structured, user-friendly output.
// A nil *DiagnosticSystem is valid and discards everything.
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystem creates a diagnostic system writing to stderr, colored
// when the terminal supports it. Stdout is left to command output.
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stderr,
		errorOut:  os.Stderr,
	}
}

// NewDiagnosticSystemWithWriter creates an uncolored diagnostic system writing
// every level to w
func NewDiagnosticSystemWithWriter(level DiagnosticLevel, w io.Writer) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:    level,
		output:   w,
		errorOut: w,
	}
}

var levelColors = map[DiagnosticLevel]*color.Color{
	DiagnosticError:   color.New(color.FgRed),
	DiagnosticWarn:    color.New(color.FgYellow),
	DiagnosticInfo:    color.New(color.FgBlue),
	DiagnosticVerbose: color.New(color.FgHiBlack),
	DiagnosticDebug:   color.New(color.FgMagenta),
}

// Enabled reports whether messages at level would be written
func (d *DiagnosticSystem) Enabled(level DiagnosticLevel) bool {
	return d != nil && d.level >= level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.Enabled(DiagnosticError) {
		d.writeMessage(d.errorOut, DiagnosticError, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.Enabled(DiagnosticWarn) {
		d.writeMessage(d.output, DiagnosticWarn, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.Enabled(DiagnosticInfo) {
		d.writeMessage(d.output, DiagnosticInfo, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.Enabled(DiagnosticVerbose) {
		d.writeMessage(d.output, DiagnosticVerbose, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.Enabled(DiagnosticDebug) {
		d.writeMessage(d.output, DiagnosticDebug, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if !d.Enabled(DiagnosticInfo) {
		return
	}
	message := fmt.Sprintf(format, args...)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.useColors {
		message = color.New(color.FgGreen).Sprint("✓ ") + message
	} else {
		message = "✓ " + message
	}
	fmt.Fprintf(d.output, "%s%s\n", d.getIndent(), message)
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.Enabled(DiagnosticInfo) {
		if d.useColors {
			title = color.New(color.FgCyan, color.Bold).Sprint(title)
		}
		fmt.Fprintf(d.output, "%s\n", title)
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.Enabled(DiagnosticInfo) {
		fmt.Fprintf(d.output, "\n%s:\n", title)
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.Enabled(DiagnosticInfo) {
		message := fmt.Sprintf(format, args...)
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), message)
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary outputs a final summary with statistics, keys sorted
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if !d.Enabled(DiagnosticInfo) {
		return
	}
	fmt.Fprintf(d.output, "\n%s\n", title)

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
	fmt.Fprintln(d.output)
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level DiagnosticLevel, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	d.mu.Lock()
	defer d.mu.Unlock()

	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	label := "[" + level.String() + "]"
	if d.useColors {
		if c, ok := levelColors[level]; ok {
			label = c.Sprint(label)
		}
	}
	output.WriteString(label)
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

// getIndent returns the current indentation string
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
	if color.NoColor {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
