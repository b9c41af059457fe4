package cli

import (
	"fmt"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
	"github.com/toyz/apiexplorer/pkg/apiexplorer/explorer"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Group orderings accepted on the command line
const (
	OrderingFirst  = "first"
	OrderingSemver = "semver"
)

// Config holds the configuration of the describe command
type Config struct {
	// Paths are manifest files or directories to walk
	Paths []string

	// Format is json or yaml
	Format string

	// DefaultGroup names the group of operations without a group name
	DefaultGroup string

	// GroupOrdering is first or semver
	GroupOrdering string

	// GroupBy groups operations by this route value when set
	GroupBy string

	// OperationIDs assigns operation ids such as getOrdersById
	OperationIDs bool

	// Compatibility is the metadata compatibility version, 2 or 3
	Compatibility int

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only shows errors
	Quiet bool
}

// DefaultConfig returns the configuration used when no flags are given
func DefaultConfig() Config {
	return Config{
		Format:        FormatJSON,
		DefaultGroup:  "default",
		GroupOrdering: OrderingFirst,
		Compatibility: int(apiexplorer.Latest),
	}
}

// Validate checks the configuration and returns every problem found
func (c Config) Validate() error {
	var errs *apierrors.MultipleErrors

	if len(c.Paths) == 0 {
		apierrors.AddToMultiple(&errs, apierrors.ConfigurationError("paths", "at least one manifest file or directory is required"))
	}
	apierrors.AddToMultiple(&errs, utils.IsOneOf("format", FormatJSON, FormatYAML)(c.Format))
	apierrors.AddToMultiple(&errs, utils.IsOneOf("group-ordering", OrderingFirst, OrderingSemver)(c.GroupOrdering))
	apierrors.AddToMultiple(&errs, utils.NotEmpty("default-group")(c.DefaultGroup))
	apierrors.AddToMultiple(&errs, utils.IsOneOf("compat", int(apiexplorer.Version2), int(apiexplorer.Version3))(c.Compatibility))
	if c.Verbose && c.Quiet {
		apierrors.AddToMultiple(&errs, apierrors.ConfigurationError("output", "-verbose and -quiet cannot be combined"))
	}

	return errs.ErrorOrNil()
}

// DiagnosticLevel returns the verbosity selected by the flags
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

// ExplorerOptions translates the configuration into explorer options
func (c Config) ExplorerOptions(diagnostics *utils.DiagnosticSystem) []explorer.Option {
	opts := []explorer.Option{
		explorer.WithCompatibility(apiexplorer.CompatibilityVersion(c.Compatibility)),
		explorer.WithDefaultGroupName(c.DefaultGroup),
		explorer.WithDiagnostics(diagnostics),
	}
	if c.GroupOrdering == OrderingSemver {
		opts = append(opts, explorer.WithGroupOrdering(explorer.SemanticVersion))
	}
	if c.GroupBy != "" {
		opts = append(opts, explorer.WithProvider(explorer.GroupByRouteValue(c.GroupBy)))
	}
	if c.OperationIDs {
		opts = append(opts, explorer.WithProvider(explorer.OperationIDProvider()))
	}
	return opts
}

// String summarizes the configuration for verbose output
func (c Config) String() string {
	return fmt.Sprintf("format=%s default-group=%s ordering=%s group-by=%q operation-ids=%t compat=%d",
		c.Format, c.DefaultGroup, c.GroupOrdering, c.GroupBy, c.OperationIDs, c.Compatibility)
}
