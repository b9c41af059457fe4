package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/apiexplorer/internal/manifest"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
	"github.com/toyz/apiexplorer/pkg/apiexplorer/explorer"
)

// ErrOperationDiagnostics is returned by Describe when at least one operation
// carries an error diagnostic. The collection has still been written.
var ErrOperationDiagnostics = errors.New("operations have error diagnostics")

// Summary contains information about a describe run
type Summary struct {
	Operations int
	Groups     []string
	Warnings   int
	Errors     int
}

// Describer loads manifests and writes the resulting operation collection
type Describer struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	loader      *manifest.Loader
}

// NewDescriber creates a describer. Load errors and operation diagnostics
// are printed through reporter.
func NewDescriber(config Config, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) *Describer {
	return &Describer{
		config:      config,
		diagnostics: diagnostics,
		reporter:    reporter,
		loader:      manifest.NewLoader(manifest.Options{Diagnostics: diagnostics}),
	}
}

// Describe runs the whole process and writes the collection to w
func (d *Describer) Describe(w io.Writer) (Summary, error) {
	var summary Summary

	d.diagnostics.Verbose("Loading manifests from %v", d.config.Paths)
	source, err := d.loader.Source(d.config.Paths...)
	if err != nil {
		d.reporter.ReportError(err)
		return summary, fmt.Errorf("loading manifests: %w", err)
	}
	d.diagnostics.Info("Declared %d operations", source.Len())
	if source.Len() == 0 {
		d.reporter.ReportWarning(fmt.Sprintf("no operations declared in %s", strings.Join(d.config.Paths, ", ")))
	}

	collection, err := explorer.New(source, d.config.ExplorerOptions(d.diagnostics)...).Collection()
	if err != nil {
		d.reporter.ReportError(err)
		return summary, fmt.Errorf("building descriptions: %w", err)
	}

	if err := Encode(w, collection, d.config.Format); err != nil {
		return summary, fmt.Errorf("writing %s: %w", d.config.Format, err)
	}

	summary.Operations = collection.TotalCount()
	summary.Groups = collection.GroupNames()
	summary.Errors = d.reporter.ReportDiagnostics(collection)
	summary.Warnings = len(collection.Diagnostics()) - summary.Errors

	if summary.Errors > 0 {
		return summary, ErrOperationDiagnostics
	}
	return summary, nil
}

// Encode writes the collection as JSON or YAML
func Encode(w io.Writer, collection *apiexplorer.OperationGroupCollection, format string) error {
	if format == FormatYAML {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(collection); err != nil {
			return err
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(collection)
}
