package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete planweave configuration
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ParserConfig controls the plan parser's heuristic policies
type ParserConfig struct {
	// SequentialDependencies adds an implicit weak dependency from each step
	// to its predecessor when no explicit marker is found (default: true).
	// Disable to treat unmarked steps as independent.
	SequentialDependencies bool `mapstructure:"sequential_dependencies"`
	// DurationScale multiplies every duration estimate (default: 1.0)
	DurationScale float64 `mapstructure:"duration_scale"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory for the log file. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// OutputConfig controls how plans are printed
type OutputConfig struct {
	// Format is the default output format: "summary" or "json" (default: "summary")
	Format string `mapstructure:"format"`
	// Color enables styled terminal output (default: true)
	Color bool `mapstructure:"color"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			SequentialDependencies: true,
			DurationScale:          1.0,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Output: OutputConfig{
			Format: "summary",
			Color:  true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Parser defaults
	viper.SetDefault("parser.sequential_dependencies", defaults.Parser.SequentialDependencies)
	viper.SetDefault("parser.duration_scale", defaults.Parser.DurationScale)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.color", defaults.Output.Color)
}

// Load unmarshals and validates the current viper configuration
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "planweave")
	}
	// Fall back to ~/.config/planweave
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planweave"
	}
	return filepath.Join(home, ".config", "planweave")
}
