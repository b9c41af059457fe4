package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	var out bytes.Buffer
	NewDiagnosticReporter(false, &out).ReportWarning("manifest has no operations")

	assert.Contains(t, out.String(), "! manifest has no operations")
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	validation := apierrors.NewValidationError("operations.method", "one of [GET POST]", "FETCH").
		WithLocation(apierrors.SourceLocation{File: "api.yaml", Line: 4, Column: 5}).
		WithContext("annotation_type", "http").
		WithSuggestion("Use an upper-case HTTP method\nsuch as GET")

	var errs *apierrors.MultipleErrors
	apierrors.AddToMultiple(&errs, validation)
	apierrors.AddToMultiple(&errs, errors.New("plain failure"))

	t.Run("compact", func(t *testing.T) {
		var out bytes.Buffer
		NewDiagnosticReporter(false, &out).ReportError(errs)
		output := out.String()

		assert.Contains(t, output, "ERROR: Loading Manifests Failed (2 problems)")
		assert.Contains(t, output, "Type: ValidationError")
		assert.Contains(t, output, "Location: api.yaml:4:5")
		assert.Contains(t, output, "Message: validation failed for 'operations.method'")
		assert.NotContains(t, output, "Message: api.yaml:4:5")
		assert.Contains(t, output, "   1. Use an upper-case HTTP method\n      such as GET\n")
		assert.Contains(t, output, "Message: plain failure")
		assert.NotContains(t, output, "Context:")
	})

	t.Run("verbose", func(t *testing.T) {
		var out bytes.Buffer
		NewDiagnosticReporter(true, &out).ReportError(validation)
		output := out.String()

		assert.Contains(t, output, "ERROR: Loading Manifests Failed\n")
		assert.Contains(t, output, "Context:\n   Annotation Type: http\n")
	})

	t.Run("nil", func(t *testing.T) {
		var out bytes.Buffer
		NewDiagnosticReporter(true, &out).ReportError(nil)
		assert.Empty(t, out.String())
	})
}

func TestDiagnosticReporter_ReportDiagnostics(t *testing.T) {
	op := &apiexplorer.OperationDescription{HTTPMethod: "GET", RelativePath: "items/{id}"}
	op.AddDiagnostic(apiexplorer.SeverityError, apiexplorer.NewUnresolvedMethodError("Items.Get", "/items/{id}"))
	op.AddDiagnostic(apiexplorer.SeverityWarning, errors.New("odd"))
	collection := apiexplorer.NewOperationGroupCollection([]apiexplorer.OperationGroup{
		{Name: "default", Operations: []*apiexplorer.OperationDescription{op}},
	}, 1)

	var out bytes.Buffer
	errorsFound := NewDiagnosticReporter(false, &out).ReportDiagnostics(collection)

	assert.Equal(t, 1, errorsFound)
	assert.Contains(t, out.String(), "x [UnresolvedMethodError]")
	assert.Contains(t, out.String(), "! [UnknownError]")
}
