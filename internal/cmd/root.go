package cmd

import (
	"strings"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/Iron-Ham/planweave/internal/engine"
	"github.com/Iron-Ham/planweave/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "planweave",
	Short: "Plan decomposition and dependency-resolution engine",
	Long: `Planweave converts an unstructured natural-language approach description
into a validated, typed graph of executable steps, and drives execution
of that graph through a ready-frontier API.

The engine computes what may run next; executing a step's actual side
effects is left to the caller (or to you, in the interactive runner).`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/planweave/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/planweave")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLANWEAVE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PLANWEAVE_PARSER_SEQUENTIAL_DEPENDENCIES for parser.sequential_dependencies
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the loaded configuration.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return logging.NopLogger()
	}
	return log
}

// newEngine builds an engine from the loaded configuration.
func newEngine(cfg *config.Config, log *logging.Logger) *engine.Engine {
	return engine.New(engine.ParserOptions{
		SequentialDependencies: cfg.Parser.SequentialDependencies,
		DurationScale:          cfg.Parser.DurationScale,
	}, log)
}
