package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// FileProcessor expands path arguments into the files to process
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// Reader returns the file reader shared by the processor
func (fp *FileProcessor) Reader() *FileReader {
	return fp.fileReader
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be entered
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// ManifestFileFilter accepts YAML files
func ManifestFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		return ext == ".yaml" || ext == ".yml"
	}
}

// DefaultDirectoryFilter skips hidden and vendored directories
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info fs.DirEntry) bool {
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// DefaultWalkOptions returns the options used for manifest discovery
func DefaultWalkOptions() FileWalkOptions {
	return FileWalkOptions{
		FileFilter:      ManifestFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
	}
}

// WalkFiles walks a directory tree and returns the matching files in lexical order
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matched []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return apierrors.WrapFileSystemError("walk", path, err)
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})

	return matched, err
}

// ExpandPaths resolves files and directories into a de-duplicated file list.
// Files named explicitly are kept even when the filter would reject them;
// directories are walked with options.
func (fp *FileProcessor) ExpandPaths(paths []string, options FileWalkOptions) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, apierrors.WrapFileSystemError("stat", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		walked, err := fp.WalkFiles(path, options)
		if err != nil {
			return nil, err
		}
		slices.Sort(walked)
		for _, file := range walked {
			add(file)
		}
	}

	return files, nil
}
