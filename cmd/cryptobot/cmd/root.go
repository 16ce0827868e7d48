package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cryptobot",
	Short: "Indicator signals and single-position crypto backtests",
	Long: `Cryptobot computes trading signals from historical price series and
replays them through a long-only, single-position simulator.

It provides tools for:
  - SMA crossover, RSI and Bollinger band signals
  - Backtests with proportional fees and slippage
  - Concurrent parameter sweeps
  - CSV and SQLite run journals with Org-mode reports

Settings come from an optional YAML/JSON file, a .env file and CRYPTOBOT_*
environment variables; command line flags win over all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	envFile  string
	logLevel string
	logJSON  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before CRYPTOBOT_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
}

// loadConfig returns the effective configuration before command flags are
// applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logJSON {
		cfg.Log.Format = "json"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Format == "json" {
		return logger.NewJSON(cfg.Log.Level)
	}
	return logger.New(cfg.Log.Level)
}
