// Rosebot plays a text MUD on the player's behalf: it watches game output,
// tracks combat and sends the commands its automation profile calls for.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine"
	"github.com/nathoo/rosebot/engine/combat"
	"github.com/nathoo/rosebot/loader"
)

var (
	// Global flags
	configPath  string
	profilePath string
	verbose     bool

	// Loaded in PersistentPreRunE
	appCfg config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rosebot",
	Short: "Combat automation bot for text MUDs",
	Long: `rosebot reads game output line by line, tracks every encounter from
first blow to experience award, and sends attack, shield, heal, loot and
safety commands according to a Lua automation profile.

Configuration is read from --config (YAML) and ROSEBOT_* environment
variables. The profile is reloaded whenever its file changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appCfg, err = config.LoadApp(configPath)
		if err != nil {
			return err
		}
		if profilePath != "" {
			appCfg.Profile = profilePath
		}

		logger, err = buildLogger(appCfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "rosebot.yaml", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "Lua automation profile (file or directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger builds the zap logger from the logging config. --verbose
// always wins.
func buildLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if lc.Level != "" {
		lvl, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// loadProfile loads the configured automation profile, or the defaults when
// none is set.
func loadProfile() (config.AutomationConfig, error) {
	if appCfg.Profile == "" {
		logger.Info("no profile configured, automation is off")
		return config.Defaults(), nil
	}
	cfg, err := loader.Load(appCfg.Profile, logger)
	if err != nil {
		return config.AutomationConfig{}, fmt.Errorf("loading profile %s: %w", appCfg.Profile, err)
	}
	logger.Info("profile loaded", zap.String("path", appCfg.Profile))
	return cfg, nil
}

// engineOptions maps the app config onto the pipeline options.
func engineOptions() engine.Options {
	return engine.Options{
		Tracker: combat.Options{
			InactivityTimeout: appCfg.Tracker.InactivityTimeout,
			AwaitingLifetime:  appCfg.Tracker.AwaitingLifetime,
			HistorySize:       appCfg.Tracker.HistorySize,
		},
		ExperienceCeiling: appCfg.Tracker.ExperienceCeiling,
		TickInterval:      appCfg.TickInterval,
	}
}
