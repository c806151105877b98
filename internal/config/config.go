// Package config loads cq tool settings from file, environment and flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete set of cq settings
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	Verbose bool          `mapstructure:"verbose"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type OutputConfig struct {
	// Format is "lines" or "table"
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	// Backend is "csv" or "badger"
	Backend   string `mapstructure:"backend"`
	BadgerDir string `mapstructure:"badger_dir"`
}

type RewriteConfig struct {
	// Seed fixes fresh variable names when non-zero
	Seed int64 `mapstructure:"seed"`
}

// Flag names bound to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-output": "log.output",
	"format":     "output.format",
	"backend":    "storage.backend",
	"badger-dir": "storage.badger_dir",
	"seed":       "rewrite.seed",
	"verbose":    "verbose",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Output:  OutputConfig{Format: "lines"},
		Storage: StorageConfig{Backend: "csv"},
	}
}

// Load reads configuration. An explicit configPath must exist; otherwise
// cq.yaml is searched for in the working directory and $HOME/.cq.
// Environment variables use the CQ_ prefix (CQ_LOG_LEVEL). Any flag in
// flags that the user set overrides both.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.badger_dir", def.Storage.BadgerDir)
	v.SetDefault("rewrite.seed", def.Rewrite.Seed)
	v.SetDefault("verbose", def.Verbose)

	v.SetEnvPrefix("CQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("cq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cq")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting holds a supported value
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	switch c.Output.Format {
	case "lines", "table":
	default:
		return fmt.Errorf("invalid output.format %q: must be lines or table", c.Output.Format)
	}
	switch c.Storage.Backend {
	case "csv":
	case "badger":
		if c.Storage.BadgerDir == "" {
			return fmt.Errorf("storage.badger_dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q: must be csv or badger", c.Storage.Backend)
	}
	return nil
}
