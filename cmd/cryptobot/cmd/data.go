package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/market"
)

// loadSeries reads cfg.Data.Path and applies the [from, to) window.
func loadSeries(cfg *config.Config) (market.Series, string, error) {
	series, err := market.LoadCSV(cfg.Data.Path)
	if err != nil {
		return nil, "", err
	}
	from, to, err := cfg.Data.Window()
	if err != nil {
		return nil, "", err
	}
	if !from.IsZero() || !to.IsZero() {
		series = series.Between(from, to)
	}
	if len(series) == 0 {
		return nil, "", fmt.Errorf("no bars in %s for the selected window", cfg.Data.Path)
	}
	return series, filepath.Base(cfg.Data.Path), nil
}
