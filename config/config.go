// Package config loads the cryptobot run configuration from YAML (or JSON)
// files, an optional .env file and CRYPTOBOT_* environment variables, in that
// order of precedence from lowest to highest.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/pkg/errs"
	"github.com/rustyeddy/cryptobot/pkg/logger"
	"github.com/rustyeddy/cryptobot/strategies"
)

// EnvPrefix prefixes every environment override, e.g.
// CRYPTOBOT_STRATEGY_SMA_FAST or CRYPTOBOT_COSTS_FEE_RATE.
const EnvPrefix = "CRYPTOBOT"

// Config represents a complete backtest run configuration.
type Config struct {
	Data     DataConfig      `json:"data" yaml:"data"`
	Strategy StrategyConfig  `json:"strategy" yaml:"strategy"`
	Costs    backtest.Costs  `json:"costs" yaml:"costs"`
	Journal  journal.Options `json:"journal" yaml:"journal"`
	Log      LogConfig       `json:"log" yaml:"log"`
}

// DataConfig names the price file and an optional [from, to) window.
type DataConfig struct {
	Path string `json:"path" yaml:"path"`
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
}

// Window parses From and To. Empty bounds are returned as zero times.
func (d DataConfig) Window() (from, to time.Time, err error) {
	if d.From != "" {
		if from, err = market.ParseTime(d.From); err != nil {
			return time.Time{}, time.Time{}, errs.Configf("data.from", "%v", err)
		}
	}
	if d.To != "" {
		if to, err = market.ParseTime(d.To); err != nil {
			return time.Time{}, time.Time{}, errs.Configf("data.to", "%v", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, errs.Configf("data.from", "must be before data.to")
	}
	return from, to, nil
}

// StrategyConfig selects a strategy and carries the parameters of all of
// them.
type StrategyConfig struct {
	Name              string `json:"name" yaml:"name"`
	strategies.Params `yaml:",inline"`
}

// Kind resolves Name.
func (s StrategyConfig) Kind() (strategies.Kind, error) {
	return strategies.ParseKind(s.Name)
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // console or json
}

// Default returns a configuration with the stock strategy parameters and
// costs and no journal.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Name:   string(strategies.KindSMACrossover),
			Params: strategies.DefaultParams(),
		},
		Costs: backtest.DefaultCosts(),
		Journal: journal.Options{
			Type: journal.KindNone,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// LoadFromFile loads and validates a configuration file. Missing keys keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, errors.Wrapf(err, "parse config (tried YAML and JSON)")
		}
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}

// ApplyEnv overlays CRYPTOBOT_* variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return errors.Wrap(err, "process environment")
	}
	return nil
}

// Load builds the effective configuration: defaults, then the file at path
// (if any), then .env, then the environment. The result is validated.
func Load(path string, dotenv ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = parseFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// Validate checks the configuration and returns a *errs.ConfigError naming
// the first bad field.
func (c *Config) Validate() error {
	kind, err := c.Strategy.Kind()
	if err != nil {
		return err
	}
	if _, err := strategies.New(kind, c.Strategy.Params); err != nil {
		return err
	}
	if err := c.Costs.Validate(); err != nil {
		return err
	}
	if _, _, err := c.Data.Window(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", journal.KindNone:
	case journal.KindCSV:
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return errs.Configf("journal.type", "csv requires trades_file and equity_file")
		}
	case journal.KindSQLite:
		if c.Journal.DBPath == "" {
			return errs.Configf("journal.db_path", "required for sqlite journal")
		}
	default:
		return errs.Configf("journal.type", "must be none, csv or sqlite, got %q", c.Journal.Type)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errs.Configf("log.level", "%v", err)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errs.Configf("log.format", "must be console or json, got %q", c.Log.Format)
	}
	return nil
}
