package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
)

const (
	AppName        = "lambdalayers"
	EnvPrefix      = "LAMBDALAYERS"
	ConfigFileName = "config.yaml"
	// HomeConfigFileName is checked in the home directory when no XDG
	// config file exists.
	HomeConfigFileName = ".lambdalayers.yaml"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

type BuildSettings struct {
	// Prefix is the top-level directory inside every archive.
	Prefix string `mapstructure:"prefix"`
	// Pip is the installer command, split on whitespace.
	Pip      string `mapstructure:"pip"`
	Platform string `mapstructure:"platform"`
}

type Config struct {
	Region    string        `mapstructure:"region"`
	Profile   string        `mapstructure:"profile"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Output    string        `mapstructure:"output"`
	Build     BuildSettings `mapstructure:"build"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Output:    OutputTable,
		Build: BuildSettings{
			Prefix:   "python",
			Pip:      "pip",
			Platform: "manylinux2014_x86_64",
		},
	}
}

type LoadOptions struct {
	// ConfigFilePath is used exclusively when set and must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the XDG config directory.
	ConfigDirPath string
	// HomeDir overrides the user's home directory.
	HomeDir string
	// Flags are bound over every other source. Only flags the user set
	// take effect.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"region":     "region",
	"profile":    "profile",
	"output":     "output",
	"log-format": "log_format",
}

// Load layers defaults, the config file, LAMBDALAYERS_* environment
// variables and flags, in increasing precedence. It returns the config and
// the path of the file it read, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("region", defaults.Region)
	v.SetDefault("profile", defaults.Profile)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("build.prefix", defaults.Build.Prefix)
	v.SetDefault("build.pip", defaults.Build.Pip)
	v.SetDefault("build.platform", defaults.Build.Platform)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := opts.ConfigFilePath
	if resolvedPath != "" {
		if !fileExists(resolvedPath) {
			return nil, "", configError(resolvedPath,
				fmt.Sprintf("config file not found: %s", resolvedPath), nil)
		}
	} else {
		path, err := defaultConfigFile(opts)
		if err != nil {
			return nil, "", err
		}
		resolvedPath = path
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", configError(resolvedPath,
				fmt.Sprintf("failed to read config file %s", resolvedPath), err)
		}
	}

	if opts.Flags != nil {
		for flagName, key := range flagKeys {
			flag := opts.Flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, "", err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", configError(resolvedPath, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return lerrors.NewValidationError("load_config",
			fmt.Sprintf("invalid output %q; must be one of table, json, yaml", c.Output), nil)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return lerrors.NewValidationError("load_config",
			fmt.Sprintf("invalid log format %q; must be text or json", c.LogFormat), nil)
	}

	if c.Build.Prefix == "" || strings.ContainsAny(c.Build.Prefix, `/\`) {
		return lerrors.NewValidationError("load_config",
			fmt.Sprintf("invalid build prefix %q; must be a single directory name", c.Build.Prefix), nil)
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/lambdalayers, defaulting to
// ~/.config/lambdalayers.
func ConfigDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// defaultConfigFile returns the first existing default config file, or ""
// when there is none.
func defaultConfigFile(opts LoadOptions) (string, error) {
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if path := filepath.Join(dir, ConfigFileName); fileExists(path) {
		return path, nil
	}

	home := opts.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			// no home directory means no home config file
			return "", nil
		}
	}
	if path := filepath.Join(home, HomeConfigFileName); fileExists(path) {
		return path, nil
	}
	return "", nil
}

func configError(path, message string, cause error) *lerrors.BuildError {
	return lerrors.NewErrorBuilder().
		Category(lerrors.ErrorCategoryConfiguration).
		Operation("load_config").
		Message(message).
		Cause(cause).
		Metadata("path", path).
		Suggestion("Check that the file exists and contains valid YAML").
		Build()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
