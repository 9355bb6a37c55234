package utils

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// FormatGoCode formats Go source code using the same logic as gofmt
func FormatGoCode(source []byte) ([]byte, error) {
	formatted, err := format.Source(source)
	if err != nil {
		fset := token.NewFileSet()
		if _, parseErr := parser.ParseFile(fset, "", source, parser.ParseComments); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
		}
		return source, err
	}
	return formatted, nil
}

// GroupImports runs goimports-style import grouping over already valid source.
// Imports are never added or removed since FormatOnly is set.
func GroupImports(filename string, source []byte) ([]byte, error) {
	return imports.Process(filename, source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

// WriteFileIfChanged writes content unless the file already holds exactly those bytes.
// It reports whether a write happened.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mockable-*.tmp")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return false, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false, err
	}
	return true, nil
}
