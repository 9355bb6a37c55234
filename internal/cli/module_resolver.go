package cli

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/mockable/internal/utils"
)

// ModuleResolver maps package directories to import paths
type ModuleResolver struct {
	gomod        *utils.GoModParser
	customModule string
}

// NewModuleResolver creates a resolver. A non-empty customModule replaces the
// module path declared by the go.mod of every directory.
func NewModuleResolver(reader *utils.FileReader, customModule string) *ModuleResolver {
	if reader == nil {
		reader = utils.NewFileReader()
	}
	return &ModuleResolver{
		gomod:        utils.NewGoModParser(reader),
		customModule: customModule,
	}
}

// ResolveModuleName returns the module path that owns dir
func (r *ModuleResolver) ResolveModuleName(dir string) (string, error) {
	_, name, err := r.module(dir)
	return name, err
}

// ImportPath builds the import path of the package in dir
func (r *ModuleResolver) ImportPath(dir string) (string, error) {
	root, name, err := r.module(dir)
	if err != nil {
		return "", err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}
	rel, err := filepath.Rel(root, absDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	rel = filepath.ToSlash(rel)
	if rel == "." {
		return name, nil
	}
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("directory %s is outside module %s", dir, name)
	}
	return path.Join(name, rel), nil
}

func (r *ModuleResolver) module(dir string) (string, string, error) {
	root, name, err := r.gomod.ModuleRoot(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}
	if r.customModule != "" {
		name = r.customModule
	}
	return root, name, nil
}
