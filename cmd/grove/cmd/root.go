// Package cmd implements the grove command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/grove/pipeline"
	"github.com/YuminosukeSato/grove/pkg/errors"
	"github.com/YuminosukeSato/grove/pkg/log"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the grove command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "random forest training pipeline",
	Long: `Grove loads a labeled tabular dataset, tunes a random forest
classifier with a cross-validated grid search, persists the best model,
and reports evaluation metrics on a held-out test partition.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if verbose {
			level = "debug"
		}
		log.Setup(level, os.Stderr)
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ./grove.yaml)")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// loadConfig layers the config file over the built-in defaults.
func loadConfig() (*pipeline.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("grove")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	cfg := pipeline.New()
	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; flags and defaults
		// still apply. An explicit --config must exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return cfg, nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", v.ConfigFileUsed(), err)
	}
	return cfg, nil
}
