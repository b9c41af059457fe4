package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/toyz/apiexplorer/internal/utils"
)

const catalogManifest = `name: catalog
types:
  Product:
    fields:
      - { name: sku, type: string, tag: 'required:"true"' }
      - { name: price, type: float64 }
controllers:
  - name: Products
    annotations: ["//axon::route api/[controller]"]
    actions:
      - name: List
        returns: "[]Product"
        annotations: ["//axon::http GET"]
        route_values: { version: v2 }
      - name: Get
        returns: Product
        annotations: ["//axon::http GET {sku}", "//axon::response 404"]
        parameters:
          - { name: sku, type: string }
        route_values: { version: v1 }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func describe(t *testing.T, config Config) (string, string, Summary, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	diagnostics := utils.NewDiagnosticSystemWithWriter(config.DiagnosticLevel(), &stderr)
	summary, err := NewDescriber(config, diagnostics, NewDiagnosticReporter(config.Verbose, &stderr)).Describe(&stdout)
	return stdout.String(), stderr.String(), summary, err
}

func TestDescribe_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "catalog.yaml", catalogManifest)

	config := DefaultConfig()
	config.Paths = []string{dir}
	config.GroupBy = "version"
	config.GroupOrdering = OrderingSemver
	config.OperationIDs = true

	stdout, _, summary, err := describe(t, config)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Operations)
	assert.Equal(t, []string{"v1", "v2"}, summary.Groups)
	assert.Equal(t, 0, summary.Errors)

	var doc struct {
		TotalCount int `json:"totalCount"`
		Groups     []struct {
			Name       string `json:"name"`
			Operations []struct {
				Method      string `json:"method"`
				Path        string `json:"path"`
				OperationID string `json:"operationId"`
				Handler     string `json:"handler"`
			} `json:"operations"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, 2, doc.TotalCount)
	require.Len(t, doc.Groups, 2)

	get := doc.Groups[0].Operations[0]
	assert.Equal(t, "v1", doc.Groups[0].Name)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "api/Products/{sku}", get.Path)
	assert.Equal(t, "ProductsController.Get", get.Handler)
	assert.Equal(t, "getApiProductsBySku", get.OperationID)
}

func TestDescribe_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.yaml", catalogManifest)

	config := DefaultConfig()
	config.Paths = []string{path}
	config.Format = FormatYAML

	stdout, _, summary, err := describe(t, config)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, summary.Groups)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, 2, doc["totalCount"])
}

func TestDescribe_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "operations:\n  - name: A\n    annotations: [\"//axon::http GET -Colour=red\"]\n")

	config := DefaultConfig()
	config.Paths = []string{dir}

	stdout, stderr, _, err := describe(t, config)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOperationDiagnostics))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "ERROR: Loading Manifests Failed")
	assert.Contains(t, stderr, "bad.yaml:3")
	assert.Contains(t, stderr, "Colour")
}

func TestDescribe_OperationDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loose.yaml", "operations:\n  - name: Orphan\n    template: /orphan\n")

	config := DefaultConfig()
	config.Paths = []string{dir}

	stdout, stderr, summary, err := describe(t, config)
	assert.ErrorIs(t, err, ErrOperationDiagnostics)
	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, stdout, `"UnresolvedMethodError"`)
	assert.Contains(t, stderr, "x [UnresolvedMethodError]")
}

func TestDescribe_WarnsWhenNothingIsDeclared(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", "name: empty\n")

	config := DefaultConfig()
	config.Paths = []string{dir}

	stdout, stderr, summary, err := describe(t, config)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Operations)
	assert.Contains(t, stdout, `"totalCount": 0`)
	assert.Contains(t, stderr, "[INFO] Declared 0 operations")
	assert.Contains(t, stderr, "! no operations declared in "+dir)
}
