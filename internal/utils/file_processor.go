package utils

import (
	"fmt"
	"go/ast"
	"go/build"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/mockable/internal/errors"
)

// GeneratedFilePrefix marks files produced by code generators; they are never scanned
const GeneratedFilePrefix = "autogen_"

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
	build      build.Context
}

// NewFileProcessor creates a new file processor. Build constraints are
// evaluated for the host platform without extra tags.
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
		build:      build.Default,
	}
}

// WithBuildTags sets the tags build constraints are evaluated with
func (fp *FileProcessor) WithBuildTags(tags []string) *FileProcessor {
	fp.build.BuildTags = append([]string(nil), tags...)
	return fp
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter filters for .go files, excluding tests and generated files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasPrefix(name, GeneratedFilePrefix)
	}
}

// SourceFileFilter narrows DefaultGoFileFilter to the files the go command
// would compile: file name suffixes and //go:build lines must match the
// platform and build tags. A file whose header cannot be read is kept so the
// parser reports it.
func (fp *FileProcessor) SourceFileFilter() FileFilter {
	goFiles := DefaultGoFileFilter()
	return func(path string, info os.DirEntry) bool {
		if !goFiles(path, info) {
			return false
		}
		match, err := fp.build.MatchFile(filepath.Dir(path), info.Name())
		return match || err != nil
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// ScanDirectoriesWithGoFiles scans directories recursively and returns those containing Go files
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		dirs, err := fp.scanDirectoryRecursive(rootDir, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	return packageDirs, nil
}

// scanDirectoryRecursive recursively scans a directory for Go files
func (fp *FileProcessor) scanDirectoryRecursive(dir string, visited map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapWithOperation("resolve", dir, err)
	}

	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	var packageDirs []string

	hasGoFiles, err := fp.HasGoFiles(absDir)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", absDir, err)
	}

	if hasGoFiles {
		packageDirs = append(packageDirs, absDir)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", absDir, err)
	}

	directoryFilter := DefaultDirectoryFilter()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		entryPath := filepath.Join(absDir, entry.Name())
		if !directoryFilter(entryPath, entry) {
			continue
		}
		// nested modules are scanned on their own
		if _, err := os.Stat(filepath.Join(entryPath, "go.mod")); err == nil {
			continue
		}

		subDirs, err := fp.scanDirectoryRecursive(entryPath, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains .go files the build would
// compile, excluding test files and generated files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileFilter := fp.SourceFileFilter()

	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}

	return false, nil
}

// SourceFile pairs a parsed file with its path
type SourceFile struct {
	Path string
	AST  *ast.File
}

// ParseDirectoryFiles parses the Go files of a directory selected by
// SourceFileFilter, in file name order
func (fp *FileProcessor) ParseDirectoryFiles(dirPath string) ([]SourceFile, string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, "", errors.WrapFileSystemError("read", dirPath, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []SourceFile
	var packageName string
	fileFilter := fp.SourceFileFilter()

	for _, entry := range entries {
		filePath := filepath.Join(dirPath, entry.Name())
		if !fileFilter(filePath, entry) {
			continue
		}

		file, err := fp.fileReader.ParseGoFile(filePath)
		if err != nil {
			return nil, "", errors.WrapParseError(entry.Name(), err)
		}

		if packageName == "" {
			packageName = file.Name.Name
		} else if file.Name.Name != packageName {
			return nil, "", fmt.Errorf("multiple packages found in directory %s: %s and %s", dirPath, packageName, file.Name.Name)
		}

		files = append(files, SourceFile{Path: filePath, AST: file})
	}

	if len(files) == 0 {
		return nil, "", fmt.Errorf("no Go files found in directory %s", dirPath)
	}

	return files, packageName, nil
}

// RemoveGeneratedFile deletes dir/fileName if present and reports whether it existed
func (fp *FileProcessor) RemoveGeneratedFile(dir, fileName string) (bool, error) {
	target := filepath.Join(dir, fileName)

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapFileSystemError("check", target, err)
	}

	if err := os.Remove(target); err != nil {
		return false, errors.WrapFileSystemError("remove", target, err)
	}

	fp.fileReader.InvalidateFile(target)
	return true, nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
