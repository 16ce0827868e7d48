package strategies

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/indicators"
)

// Bollinger buys while the close is under the lower band and sells while it
// is over the upper band. Like RSI it is level-triggered.
type Bollinger struct {
	BollingerParams
}

func NewBollinger(p BollingerParams) *Bollinger {
	return &Bollinger{BollingerParams: p}
}

func (s *Bollinger) Kind() Kind      { return KindBollinger }
func (s *Bollinger) Name() string    { return fmt.Sprintf("BB(%d,%g)", s.Period, s.StdDevs) }
func (s *Bollinger) Validate() error { return s.BollingerParams.Validate() }

// Warmup is Period-1: the bands exist from the Period-th close on.
func (s *Bollinger) Warmup() int { return s.Period - 1 }

func (s *Bollinger) Evaluate(closes []float64) ([]Indicators, []Signal) {
	bb := indicators.NewBollinger(s.Period, s.StdDevs)

	ind := make([]Indicators, len(closes))
	sig := make([]Signal, len(closes))
	for i, c := range closes {
		bb.Update(c)
		upper, middle, lower := bb.Bands()
		ind[i] = Indicators{Upper: upper, Middle: middle, Lower: lower}
		switch {
		case c < lower:
			sig[i] = Buy
		case c > upper:
			sig[i] = Sell
		}
	}
	return ind, sig
}
