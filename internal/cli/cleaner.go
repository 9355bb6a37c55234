package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/toyz/mockable/internal/utils"
)

// Cleaner removes generated files
type Cleaner struct {
	processor *utils.FileProcessor
	fileName  string
}

// NewCleaner creates a cleaner for files named fileName
func NewCleaner(processor *utils.FileProcessor, fileName string) *Cleaner {
	if processor == nil {
		processor = utils.NewFileProcessor()
	}
	return &Cleaner{processor: processor, fileName: fileName}
}

// CleanGeneratedFiles removes the generated file from every directory matched
// by args and returns the removed paths. Directories are visited even when the
// generated file is the only Go file left in them.
func (c *Cleaner) CleanGeneratedFiles(args []string) ([]string, error) {
	var removed []string
	for _, arg := range args {
		root, recursive := SplitPattern(arg)
		dirs, err := c.directories(root, recursive)
		if err != nil {
			return removed, err
		}
		for _, dir := range dirs {
			ok, err := c.processor.RemoveGeneratedFile(dir, c.fileName)
			if err != nil {
				return removed, fmt.Errorf("failed to clean directory %s: %w", dir, err)
			}
			if ok {
				removed = append(removed, filepath.Join(dir, c.fileName))
			}
		}
	}
	return removed, nil
}

func (c *Cleaner) directories(root string, recursive bool) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	if !recursive {
		return []string{root}, nil
	}

	filter := utils.DefaultDirectoryFilter()
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped, the rest is still cleaned
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !filter(path, d) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
