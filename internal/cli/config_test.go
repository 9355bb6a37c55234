package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("mockable", pflag.ContinueOnError)
	flags.String("module", "", "")
	flags.String("output", models.DefaultOutputFile, "")
	flags.StringSlice("tags", nil, "")
	flags.Bool("verbose", false, "")
	flags.Bool("quiet", false, "")
	flags.Bool("watch", false, "")
	flags.Duration("debounce", 300*time.Millisecond, "")
	flags.String("level", "", "")
	return flags
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Directories, cfg.Directories)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Debounce, cfg.Debounce)
	assert.Empty(t, cfg.Tags)
	assert.Empty(t, cfg.ModuleName)
	assert.False(t, cfg.Watch)
	assert.Equal(t, utils.DiagnosticInfo, cfg.DiagnosticLevel())
}

func TestLoadConfigSources(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".mockable.yaml": `directories:
  - ./internal/...
output: autogen_wrappers.go
tags: [integration]
debounce: 1s
verbose: true
`,
	})
	chdir(t, dir)

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig("", testFlags())
		require.NoError(t, err)
		assert.Equal(t, []string{"./internal/..."}, cfg.Directories)
		assert.Equal(t, "autogen_wrappers.go", cfg.Output)
		assert.Equal(t, []string{"integration"}, cfg.Tags)
		assert.Equal(t, time.Second, cfg.Debounce)
		assert.Equal(t, utils.DiagnosticVerbose, cfg.DiagnosticLevel())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("MOCKABLE_OUTPUT", "autogen_env.go")
		cfg, err := LoadConfig("", testFlags())
		require.NoError(t, err)
		assert.Equal(t, "autogen_env.go", cfg.Output)
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("MOCKABLE_OUTPUT", "autogen_env.go")
		flags := testFlags()
		require.NoError(t, flags.Parse([]string{"--output", "autogen_flag.go", "--level", "debug"}))

		cfg, err := LoadConfig("", flags)
		require.NoError(t, err)
		assert.Equal(t, "autogen_flag.go", cfg.Output)
		assert.Equal(t, utils.DiagnosticDebug, cfg.DiagnosticLevel())
	})

	t.Run("explicit file", func(t *testing.T) {
		other := writeTree(t, map[string]string{
			"custom.yaml": "module: example.com/custom\nquiet: true\n",
		})
		cfg, err := LoadConfig(filepath.Join(other, "custom.yaml"), nil)
		require.NoError(t, err)
		assert.Equal(t, "example.com/custom", cfg.ModuleName)
		assert.Equal(t, utils.DiagnosticError, cfg.DiagnosticLevel())
	})
}

func TestLoadConfigErrors(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("invalid flag value", func(t *testing.T) {
		flags := testFlags()
		require.NoError(t, flags.Parse([]string{"--output", "wrappers.go"}))
		_, err := LoadConfig("", flags)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "autogen_")
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"verbose and quiet", func(c *Config) { c.Verbose, c.Quiet = true, true }, "cannot be combined"},
		{"unknown level", func(c *Config) { c.Level = "loud" }, "invalid level"},
		{"bad module", func(c *Config) { c.ModuleName = "not a path" }, "invalid module path"},
		{"output without prefix", func(c *Config) { c.Output = "wrappers.go" }, "must start with"},
		{"output without extension", func(c *Config) { c.Output = "autogen_wrappers" }, "must start with"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDiagnosticLevel(t *testing.T) {
	assert.Equal(t, utils.DiagnosticSilent, Config{Level: "silent", Verbose: true}.DiagnosticLevel())
	assert.Equal(t, utils.DiagnosticError, Config{Quiet: true}.DiagnosticLevel())
	assert.Equal(t, utils.DiagnosticInfo, Config{}.DiagnosticLevel())
}
