package utils

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
)

// FileReader reads and parses files, reusing results until the file changes on disk
type FileReader struct {
	fileSet      *token.FileSet
	astCache     *Cache[string, *ast.File]
	contentCache *Cache[string, string]
	diag         *DiagnosticSystem
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:      token.NewFileSet(),
		astCache:     NewCache[string, *ast.File](),
		contentCache: NewCache[string, string](),
		diag:         NewDiagnosticSystem(DiagnosticSilent),
	}
}

// WithDiagnostics logs cache misses that could not be stored to diag
func (fr *FileReader) WithDiagnostics(diag *DiagnosticSystem) *FileReader {
	if diag != nil {
		fr.diag = diag
	}
	return fr
}

// ParseGoFile parses a Go source file with comments and returns the cached AST when unchanged
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return nil, err
	}

	if cached, exists := fr.astCache.GetWithFileValidation(cleanPath, cleanPath); exists {
		return cached, nil
	}

	file, err := parser.ParseFile(fr.fileSet, cleanPath, nil, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file %s: %w", filepath.Base(cleanPath), err)
	}

	if err := fr.astCache.SetWithFileInfo(cleanPath, file, cleanPath); err != nil {
		fr.diag.Debug("not caching %s: %v", cleanPath, err)
	}

	return file, nil
}

// ParseGoSource parses Go source code from a string
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	file, err := parser.ParseFile(fr.fileSet, filename, source, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source: %w", err)
	}
	return file, nil
}

// ReadFile reads a file and returns its contents as a string with caching
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return "", err
	}

	if cached, exists := fr.contentCache.GetWithFileValidation(cleanPath, cleanPath); exists {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}

	contentStr := string(content)
	if err := fr.contentCache.SetWithFileInfo(cleanPath, contentStr, cleanPath); err != nil {
		fr.diag.Debug("not caching %s: %v", cleanPath, err)
	}

	return contentStr, nil
}

// GetFileSet returns the token.FileSet used by this reader. It only grows:
// every file parsed again after a change adds a new entry.
func (fr *FileReader) GetFileSet() *token.FileSet {
	return fr.fileSet
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	cleanPath := filepath.Clean(filePath)
	fr.astCache.Delete(cleanPath)
	fr.contentCache.Delete(cleanPath)
}

// ClearCache clears all cached files
func (fr *FileReader) ClearCache() {
	fr.astCache.Clear()
	fr.contentCache.Clear()
}

// GetCacheStats returns statistics about the cache
func (fr *FileReader) GetCacheStats() (astFiles, contentFiles int) {
	return fr.astCache.Size(), fr.contentCache.Size()
}

func (fr *FileReader) cleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", fmt.Errorf("file path %w", err)
	}

	cleanPath := filepath.Clean(filePath)
	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", cleanPath)
	}

	return cleanPath, nil
}
