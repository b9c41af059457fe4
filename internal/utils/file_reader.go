package utils

import (
	"os"
	"path/filepath"
	"time"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

type cachedFile struct {
	content []byte
	modTime time.Time
	size    int64
}

// FileReader reads files and caches their content until the file's
// modification time or size changes
type FileReader struct {
	contentCache *Cache[string, cachedFile]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, cachedFile](),
	}
}

// ReadFile returns the content of a file, served from cache when the file is unchanged.
// The returned slice must not be modified.
func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	cleanPath, info, err := fr.stat(filePath)
	if err != nil {
		return nil, err
	}

	if cached, ok := fr.contentCache.Get(cleanPath); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.content, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, apierrors.WrapFileSystemError("read", cleanPath, err)
	}

	fr.contentCache.Set(cleanPath, cachedFile{content: content, modTime: info.ModTime(), size: info.Size()})
	return content, nil
}

func (fr *FileReader) stat(filePath string) (string, os.FileInfo, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", nil, err
	}

	cleanPath := filepath.Clean(filePath)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", nil, apierrors.WrapFileSystemError("stat", cleanPath, err)
	}
	if info.IsDir() {
		return "", nil, apierrors.New(apierrors.FileSystemErrorCode, "path is a directory: "+cleanPath)
	}
	return cleanPath, info, nil
}
