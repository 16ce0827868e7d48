package strategies

import (
	"math"

	"github.com/rustyeddy/cryptobot/pkg/errs"
)

// Params carries the settings for every strategy kind; each strategy reads
// only its own section.
type Params struct {
	SMA       SMAParams       `json:"sma" yaml:"sma"`
	RSI       RSIParams       `json:"rsi" yaml:"rsi"`
	Bollinger BollingerParams `json:"bollinger" yaml:"bollinger"`
}

type SMAParams struct {
	Fast int `json:"fast" yaml:"fast"`
	Slow int `json:"slow" yaml:"slow"`
}

type RSIParams struct {
	Period     int     `json:"period" yaml:"period"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
	Overbought float64 `json:"overbought" yaml:"overbought"`
}

type BollingerParams struct {
	Period  int     `json:"period" yaml:"period"`
	StdDevs float64 `json:"std_devs" yaml:"std_devs" split_words:"true"`
}

// DefaultParams returns the stock settings: SMA 20/50, RSI 14 with 30/70,
// Bollinger 20 at 2 standard deviations.
func DefaultParams() Params {
	return Params{
		SMA:       SMAParams{Fast: 20, Slow: 50},
		RSI:       RSIParams{Period: 14, Oversold: 30, Overbought: 70},
		Bollinger: BollingerParams{Period: 20, StdDevs: 2},
	}
}

func (p SMAParams) Validate() error {
	if p.Fast <= 0 {
		return errs.Configf("sma.fast", "must be positive, got %d", p.Fast)
	}
	if p.Slow <= 0 {
		return errs.Configf("sma.slow", "must be positive, got %d", p.Slow)
	}
	if p.Fast >= p.Slow {
		return errs.Configf("sma.fast", "must be less than sma.slow (got %d/%d)", p.Fast, p.Slow)
	}
	return nil
}

func (p RSIParams) Validate() error {
	if p.Period <= 0 {
		return errs.Configf("rsi.period", "must be positive, got %d", p.Period)
	}
	if !inPercent(p.Oversold) {
		return errs.Configf("rsi.oversold", "must be within [0,100], got %v", p.Oversold)
	}
	if !inPercent(p.Overbought) {
		return errs.Configf("rsi.overbought", "must be within [0,100], got %v", p.Overbought)
	}
	if p.Oversold >= p.Overbought {
		return errs.Configf("rsi.oversold", "must be below rsi.overbought (got %v/%v)", p.Oversold, p.Overbought)
	}
	return nil
}

func (p BollingerParams) Validate() error {
	if p.Period < 2 {
		return errs.Configf("bollinger.period", "must be at least 2, got %d", p.Period)
	}
	if p.StdDevs < 0 || math.IsNaN(p.StdDevs) || math.IsInf(p.StdDevs, 0) {
		return errs.Configf("bollinger.std_devs", "must be finite and >= 0, got %v", p.StdDevs)
	}
	return nil
}

func inPercent(v float64) bool {
	return v >= 0 && v <= 100
}
