package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":                        "module example.com/app\n",
		"main.go":                       "package main\n",
		"services/user.go":              "package services\n",
		"services/sub/helper.go":        "package sub\n",
		"models/user_test.go":           "package models\n",
		"models/autogen_mockable.go":    "package models\n",
		"vendor/dep/dep.go":             "package dep\n",
		"testdata/fixture.go":           "package fixture\n",
		".hidden/x.go":                  "package x\n",
		"nested/go.mod":                 "module example.com/nested\n",
		"nested/inner.go":               "package nested\n",
		"empty/README.md":               "docs\n",
		"services/sub/deeper/deeper.go": "package deeper\n",
	})
	scanner := NewDirectoryScanner(nil)

	t.Run("recursive", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{root + RecursiveSuffix})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			root,
			filepath.Join(root, "services"),
			filepath.Join(root, "services", "sub"),
			filepath.Join(root, "services", "sub", "deeper"),
		}, dirs)
	})

	t.Run("plain directory is not entered", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{filepath.Join(root, "services")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "services")}, dirs)
	})

	t.Run("only tests and generated files", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{filepath.Join(root, "models")})
		require.NoError(t, err)
		assert.Empty(t, dirs)
	})

	t.Run("duplicates keep argument order", func(t *testing.T) {
		services := filepath.Join(root, "services")
		dirs, err := scanner.ScanDirectories([]string{services, root + RecursiveSuffix, services})
		require.NoError(t, err)
		require.NotEmpty(t, dirs)
		assert.Equal(t, services, dirs[0])
		assert.Len(t, dirs, 4)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{filepath.Join(root, "missing")})
		assert.Error(t, err)
	})

	t.Run("relative pattern", func(t *testing.T) {
		chdir(t, root)
		dirs, err := scanner.ScanDirectories([]string{"./services/..."})
		require.NoError(t, err)
		assert.Len(t, dirs, 3)
		for _, dir := range dirs {
			assert.True(t, filepath.IsAbs(dir))
		}
	})
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		arg       string
		root      string
		recursive bool
	}{
		{"...", ".", true},
		{"./...", ".", true},
		{"/...", ".", true},
		{"./internal/...", "./internal", true},
		{"./internal", "./internal", false},
		{"pkg", "pkg", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			root, recursive := SplitPattern(tt.arg)
			assert.Equal(t, tt.root, root)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestRoots(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	roots, err := Roots([]string{"./...", "./internal/..."})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{wd, filepath.Join(wd, "internal")}, roots)
}
