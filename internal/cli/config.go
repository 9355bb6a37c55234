package cli

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

// ConfigFileName is looked up in the working directory when no --config is given
const ConfigFileName = ".mockable"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated Go files
	Directories []string `mapstructure:"directories"`

	// ModuleName overrides the module path read from go.mod
	ModuleName string `mapstructure:"module"`

	// Output is the name of the generated file in every annotated package
	Output string `mapstructure:"output"`

	// Tags are build tags used when loading marker targets
	Tags []string `mapstructure:"tags"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
	Watch   bool `mapstructure:"watch"`

	// Level names a diagnostic level ("debug", "warn", ...) and wins over Verbose and Quiet
	Level string `mapstructure:"level"`

	// Debounce is the quiet period after a change before watch mode starts a pass
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Directories: []string{"./..."},
		Output:      models.DefaultOutputFile,
		Debounce:    300 * time.Millisecond,
	}
}

// LoadConfig merges defaults, the config file, MOCKABLE_* environment
// variables and explicitly set flags, in increasing priority. An empty path
// searches for .mockable.yaml in the working directory and tolerates its absence.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("directories", defaults.Directories)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("debounce", defaults.Debounce)
	v.SetDefault("module", "")
	v.SetDefault("tags", []string{})
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("watch", false)
	v.SetDefault("level", "")

	v.SetEnvPrefix("MOCKABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, errors.WrapConfigurationError(configName(path), "read", err)
		}
	}

	if flags != nil {
		for _, key := range []string{"module", "output", "tags", "verbose", "quiet", "watch", "debounce", "level"} {
			if flag := flags.Lookup(key); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, errors.WrapConfigurationError(key, "bind", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.WrapConfigurationError(configName(path), "decode", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late in a pass
func (c Config) Validate() error {
	if c.Verbose && c.Quiet {
		return errors.New(errors.ConfigurationErrorCode, "verbose and quiet cannot be combined")
	}
	if c.Level != "" {
		if _, err := utils.ParseDiagnosticLevel(c.Level); err != nil {
			return errors.Wrap(errors.ConfigurationErrorCode, "invalid level", err)
		}
	}
	if c.ModuleName != "" {
		if err := utils.IsImportPath("module")(c.ModuleName); err != nil {
			return errors.Wrap(errors.ConfigurationErrorCode, "invalid module path", err)
		}
	}
	if c.Output != "" && (!strings.HasPrefix(c.Output, utils.GeneratedFilePrefix) || !strings.HasSuffix(c.Output, ".go")) {
		return errors.New(errors.ConfigurationErrorCode,
			fmt.Sprintf("output %q must start with %q and end with .go", c.Output, utils.GeneratedFilePrefix)).
			WithSuggestion("Generated files are only skipped by discovery when they carry the prefix")
	}
	if c.Debounce < 0 {
		return errors.New(errors.ConfigurationErrorCode, "debounce must not be negative")
	}
	return nil
}

// DiagnosticLevel maps the verbosity flags to a diagnostic level
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	if level, err := utils.ParseDiagnosticLevel(c.Level); c.Level != "" && err == nil {
		return level
	}
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

func configName(path string) string {
	if path != "" {
		return path
	}
	return ConfigFileName + ".yaml"
}
