package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/utils"
)

// RecursiveSuffix marks a directory argument that includes every subdirectory
const RecursiveSuffix = "/..."

// DirectoryScanner expands directory arguments into package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(processor *utils.FileProcessor) *DirectoryScanner {
	if processor == nil {
		processor = utils.NewFileProcessor()
	}
	return &DirectoryScanner{fileProcessor: processor}
}

// ScanDirectories returns the absolute directories holding Go files, in
// argument order without duplicates. "dir/..." includes subdirectories; a plain
// directory is taken as is. Nested modules are not entered.
func (s *DirectoryScanner) ScanDirectories(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(found ...string) {
		for _, dir := range found {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}

	for _, arg := range args {
		root, recursive := SplitPattern(arg)
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", root), err)
		}

		if recursive {
			found, err := s.fileProcessor.ScanDirectoriesWithGoFiles([]string{abs})
			if err != nil {
				return nil, err
			}
			add(found...)
			continue
		}

		ok, err := s.fileProcessor.HasGoFiles(abs)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", abs, err)
		}
		if ok {
			add(abs)
		}
	}

	return dirs, nil
}

// SplitPattern separates "dir/..." into its root and the recursive flag
func SplitPattern(arg string) (string, bool) {
	if arg == "..." {
		return ".", true
	}
	if !strings.HasSuffix(arg, RecursiveSuffix) {
		return arg, false
	}
	root := strings.TrimSuffix(arg, RecursiveSuffix)
	if root == "" {
		root = "."
	}
	return root, true
}

// Roots returns the absolute root directory of every argument
func Roots(args []string) ([]string, error) {
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		root, _ := SplitPattern(arg)
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", root), err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}
