package strategies

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/indicators"
)

// RSI buys while the index is below Oversold and sells while it is above
// Overbought. It is level-triggered: every bar inside a zone fires again.
type RSI struct {
	RSIParams
}

func NewRSI(p RSIParams) *RSI {
	return &RSI{RSIParams: p}
}

func (s *RSI) Kind() Kind { return KindRSI }
func (s *RSI) Name() string {
	return fmt.Sprintf("RSI(%d,%g/%g)", s.Period, s.Oversold, s.Overbought)
}
func (s *RSI) Validate() error { return s.RSIParams.Validate() }

// Warmup is Period: the first close only seeds the first delta.
func (s *RSI) Warmup() int { return s.Period }

func (s *RSI) Evaluate(closes []float64) ([]Indicators, []Signal) {
	rsi := indicators.Batch(indicators.NewRSI(s.Period), closes)

	ind := make([]Indicators, len(closes))
	sig := make([]Signal, len(closes))
	for i, v := range rsi {
		ind[i] = Indicators{RSI: v}
		switch {
		case v < s.Oversold:
			sig[i] = Buy
		case v > s.Overbought:
			sig[i] = Sell
		}
	}
	return ind, sig
}
