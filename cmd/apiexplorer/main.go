package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toyz/apiexplorer/internal/cli"
	"github.com/toyz/apiexplorer/internal/utils"
)

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitDiagnostics = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	config := cli.DefaultConfig()

	flags := flag.NewFlagSet("apiexplorer", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&config.Format, "format", config.Format, "Output format: json or yaml")
	flags.StringVar(&config.DefaultGroup, "default-group", config.DefaultGroup, "Group name of operations without one")
	flags.StringVar(&config.GroupOrdering, "group-ordering", config.GroupOrdering, "Group order: first (first appearance) or semver")
	flags.StringVar(&config.GroupBy, "group-by", "", "Group operations by this route value, e.g. version")
	flags.BoolVar(&config.OperationIDs, "operation-ids", false, "Assign operation ids such as getOrdersById")
	flags.IntVar(&config.Compatibility, "compat", config.Compatibility, "Metadata compatibility version (2 or 3)")
	flags.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output and detailed error reporting")
	flags.BoolVar(&config.Quiet, "quiet", false, "Only show errors")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: apiexplorer [options] <manifest-paths...>\n\n")
		fmt.Fprintf(stderr, "API Description Explorer\n")
		fmt.Fprintf(stderr, "Reads YAML manifests of controllers and actions annotated with //axon:: attributes\n")
		fmt.Fprintf(stderr, "and prints the operation descriptions the engine assembles from them.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  manifest-paths     Manifest files, or directories walked for *.yaml and *.yml\n")
		fmt.Fprintf(stderr, "\nExit codes:\n")
		fmt.Fprintf(stderr, "  0  descriptions written\n")
		fmt.Fprintf(stderr, "  1  invalid arguments or manifests\n")
		fmt.Fprintf(stderr, "  2  descriptions written, but some operations have error diagnostics\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  apiexplorer ./api                                  # Describe every manifest under ./api\n")
		fmt.Fprintf(stderr, "  apiexplorer -format yaml orders.yaml               # Print YAML\n")
		fmt.Fprintf(stderr, "  apiexplorer -group-by version -group-ordering semver ./api\n")
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}
	config.Paths = flags.Args()

	reporter := cli.NewDiagnosticReporter(config.Verbose, stderr)
	if err := config.Validate(); err != nil {
		reporter.ReportError(err)
		flags.Usage()
		return exitFailure
	}

	diagnostics := newDiagnostics(config.DiagnosticLevel(), stderr)
	diagnostics.Section("API Description Explorer")
	if config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.Indent()
		diagnostics.List("Manifests: %s", strings.Join(config.Paths, ", "))
		diagnostics.List("Settings: %s", config)
		diagnostics.Unindent()
	}

	summary, err := cli.NewDescriber(config, diagnostics, reporter).Describe(stdout)
	switch {
	case errors.Is(err, cli.ErrOperationDiagnostics):
		diagnostics.Error("%d operation diagnostic(s) are errors", summary.Errors)
		return exitDiagnostics
	case err != nil:
		diagnostics.Error("%v", err)
		return exitFailure
	}

	diagnostics.Success("Described %d operations", summary.Operations)
	diagnostics.Summary("Descriptions Complete", map[string]interface{}{
		"Operations": summary.Operations,
		"Groups":     strings.Join(summary.Groups, ", "),
		"Warnings":   summary.Warnings,
	})
	return exitOK
}

// newDiagnostics colors output when it goes to the process's own stderr
func newDiagnostics(level utils.DiagnosticLevel, stderr io.Writer) *utils.DiagnosticSystem {
	if stderr == os.Stderr {
		return utils.NewDiagnosticSystem(level)
	}
	return utils.NewDiagnosticSystemWithWriter(level, stderr)
}
