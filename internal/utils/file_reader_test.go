package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

func TestFileReader_Caching(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(testFile, []byte("name: orders\n"), 0o644))

	reader := NewFileReader()

	first, err := reader.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "name: orders\n", string(first))
	assert.Equal(t, 1, reader.contentCache.Size())

	second, err := reader.ReadFile(testFile)
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0], "unchanged file is served from cache")

	// A different size invalidates the entry even if the mtime did not move.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(testFile, []byte("name: orders-v2\n"), 0o644))
	require.NoError(t, os.Chtimes(testFile, later, later))

	third, err := reader.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "name: orders-v2\n", string(third))
	assert.Equal(t, 1, reader.contentCache.Size())
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	t.Run("empty path", func(t *testing.T) {
		_, err := reader.ReadFile("  ")
		var validationErr *apierrors.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "filePath", validationErr.Field)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := reader.ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := reader.ReadFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})
}
