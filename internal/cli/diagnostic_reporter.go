package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// DiagnosticReporter prints load errors and operation diagnostics in a
// readable form
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err. Collections are expanded so that every entry gets
// its own block.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	entries := flatten(err)

	title := "ERROR: Loading Manifests Failed"
	if len(entries) > 1 {
		title = fmt.Sprintf("%s (%d problems)", title, len(entries))
	}
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	for _, entry := range entries {
		var explorerErr apierrors.ExplorerError
		if errors.As(entry, &explorerErr) {
			r.reportExplorerError(explorerErr)
		} else {
			fmt.Fprintf(r.out, "Message: %s\n\n", entry.Error())
		}
	}
}

// ReportDiagnostics prints the diagnostics of a collection and returns how
// many of them are errors
func (r *DiagnosticReporter) ReportDiagnostics(collection *apiexplorer.OperationGroupCollection) int {
	errorCount := 0
	for _, d := range collection.Diagnostics() {
		line := fmt.Sprintf("[%s] %s: %v", d.Code(), d.Operation, d.Err)
		if d.Severity == apiexplorer.SeverityError {
			errorCount++
			color.New(color.FgRed, color.Bold).Fprint(r.out, "x ")
			fmt.Fprintf(r.out, "%s\n", line)
		} else {
			r.ReportWarning(line)
		}

		var explorerErr apierrors.ExplorerError
		if r.verbose && errors.As(d.Err, &explorerErr) {
			for _, suggestion := range explorerErr.Suggestions() {
				fmt.Fprintf(r.out, "    hint: %s\n", suggestion)
			}
		}
	}
	return errorCount
}

func (r *DiagnosticReporter) reportExplorerError(err apierrors.ExplorerError) {
	typeName := err.ErrorCode().String()
	fmt.Fprintf(r.out, "Type: %s\n", typeName)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(typeName)+6))

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}
	fmt.Fprintf(r.out, "Message: %s\n\n", message(err))

	if r.verbose {
		if cause := err.Unwrap(); cause != nil {
			fmt.Fprintf(r.out, "Underlying cause: %s\n\n", cause.Error())
		}
		if ctx := err.Context(); len(ctx) > 0 {
			r.printContext(ctx)
		}
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
}

// message strips the location prefix that Error() adds, since it is printed separately
func message(err apierrors.ExplorerError) string {
	msg := err.Error()
	if loc := err.Location(); !loc.IsEmpty() {
		msg = strings.TrimPrefix(msg, loc.String()+": ")
	}
	return msg
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.out, "\n")
}

// flatten expands nested MultipleErrors into their entries
func flatten(err error) []error {
	multi, ok := err.(*apierrors.MultipleErrors)
	if !ok {
		return []error{err}
	}
	var entries []error
	for _, e := range multi.Errors {
		entries = append(entries, flatten(e)...)
	}
	return entries
}
