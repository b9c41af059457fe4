package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apiexplorer/internal/utils"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Arguments(t *testing.T) {
	t.Run("help flag", func(t *testing.T) {
		code, _, stderr := runCLI("-help")
		assert.Equal(t, exitOK, code)
		assert.Contains(t, stderr, "Usage:")
		assert.Contains(t, stderr, "API Description Explorer")
		assert.Contains(t, stderr, "-group-ordering")
		assert.Contains(t, stderr, "manifest-paths")
	})

	t.Run("no arguments", func(t *testing.T) {
		code, _, stderr := runCLI()
		assert.Equal(t, exitFailure, code)
		assert.Contains(t, stderr, "at least one manifest file or directory is required")
	})

	t.Run("unknown flag", func(t *testing.T) {
		code, _, stderr := runCLI("-module", "x", ".")
		assert.Equal(t, exitFailure, code)
		assert.Contains(t, stderr, "flag provided but not defined")
	})

	t.Run("bad format", func(t *testing.T) {
		code, _, stderr := runCLI("-format", "xml", ".")
		assert.Equal(t, exitFailure, code)
		assert.Contains(t, stderr, "'format'")
	})

	t.Run("nonexistent path", func(t *testing.T) {
		code, stdout, stderr := runCLI(filepath.Join(t.TempDir(), "missing"))
		assert.Equal(t, exitFailure, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "FileSystemError")
	})
}

func TestRun_Describe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "health.yaml"), []byte(`operations:
  - name: Health
    annotations: ["//axon::http GET health"]
`), 0o644))

	code, stdout, stderr := runCLI("-operation-ids", dir)
	assert.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, `"operationId": "getHealth"`)
	assert.Contains(t, stderr, "Descriptions Complete")
	assert.Contains(t, stderr, "Operations: 1")
	assert.Contains(t, stderr, "✓ Described 1 operations")

	code, stdout, stderr = runCLI("-quiet", "-format", "yaml", dir)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "path: health")
	assert.Empty(t, stderr)
}

func TestRun_DiagnosticsExitCode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.yaml"), []byte("operations:\n  - name: Orphan\n    template: /orphan\n"), 0o644))

	code, stdout, stderr := runCLI("-verbose", dir)
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, stdout, "UnresolvedMethodError")
	assert.Contains(t, stderr, "operation diagnostic(s) are errors")
	assert.Contains(t, stderr, "hint: add an HTTPMethod attribute")
	assert.Contains(t, stderr, "\nConfiguration:\n  - Manifests: "+dir+"\n")
}

func TestNewDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	newDiagnostics(utils.DiagnosticInfo, &buf).Info("to the buffer")
	assert.Equal(t, "[INFO] to the buffer\n", buf.String())

	assert.True(t, newDiagnostics(utils.DiagnosticInfo, os.Stderr).Enabled(utils.DiagnosticInfo))
}
