/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jacobarthurs/accelplan/internal/profile"
)

var Version = "dev"

// logger is ready once PersistentPreRunE has run; every entry carries the
// run_id of the invocation.
var logger = zerolog.Nop()

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default <config dir>/accelplan/config.yaml)")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("hardware", "", "Hardware profile YAML file")
	flags.String("cost-model", "", "Cost model YAML file overriding the built-in constants")
	flags.StringP("format", "f", "text", "Output format: text, json")
	flags.Bool("no-color", false, "Disable ANSI colours in text output")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("binding flags: %w", err))
	}
	viper.SetEnvPrefix("ACCELPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "accelplan",
	SilenceUsage: true,
	Short:        "Recommend hardware backends for query plan operators",
	Long: `accelplan reads a query, or the EXPLAIN plan for it, and recommends
which hardware backend (CPU/SIMD, GPU, FPGA, NPU) should run each operator.

It compares a CPU-only strategy with an accelerated one, reports the
break-even query rate when acceleration costs more per run, and prints
configuration and schema recommendations.`,
	Example: `  # Analyze a query heuristically
  accelplan analyze --query "SELECT region, SUM(cost) FROM cur GROUP BY region"

  # Analyze an EXPLAIN plan against a hardware profile
  accelplan analyze plan.json --hardware gpu-node.yaml

  # Compare two plans
  accelplan compare old.json new.json

  # Create a config file
  accelplan init`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		logger = setupLogging(viper.GetString("log-level")).With().
			Str("run_id", uuid.NewString()).
			Str("command", cmd.Name()).
			Logger()
		logger.Debug().Str("config", viper.ConfigFileUsed()).Msg("starting")
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		return nil
	}

	dir, err := profile.ConfigDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(dir)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func setupLogging(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		logLevel = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    viper.GetBool("no-color"),
	}

	return zerolog.New(out).
		Level(logLevel).
		With().
		Timestamp().
		Logger()
}
