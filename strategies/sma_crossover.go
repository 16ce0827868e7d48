package strategies

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/indicators"
)

// SMACrossover signals when the fast moving average crosses the slow one.
//
//   - Buy:  fast <= slow on the previous bar and fast > slow now
//   - Sell: fast >= slow on the previous bar and fast < slow now
//
// A previous-bar tie counts as "not above" for Buy and "not below" for Sell,
// so a cross out of a tie fires once.
type SMACrossover struct {
	SMAParams
}

func NewSMACrossover(p SMAParams) *SMACrossover {
	return &SMACrossover{SMAParams: p}
}

func (s *SMACrossover) Kind() Kind      { return KindSMACrossover }
func (s *SMACrossover) Name() string    { return fmt.Sprintf("SMA(%d/%d)", s.Fast, s.Slow) }
func (s *SMACrossover) Validate() error { return s.SMAParams.Validate() }

// Warmup is Slow: the slow average is first defined at index Slow-1 and the
// comparison needs one earlier bar of both averages.
func (s *SMACrossover) Warmup() int { return s.Slow }

func (s *SMACrossover) Evaluate(closes []float64) ([]Indicators, []Signal) {
	fast := indicators.Batch(indicators.NewSMA(s.Fast), closes)
	slow := indicators.Batch(indicators.NewSMA(s.Slow), closes)

	ind := make([]Indicators, len(closes))
	sig := make([]Signal, len(closes))
	for i := range closes {
		ind[i] = Indicators{FastMA: fast[i], SlowMA: slow[i]}
		if i == 0 {
			continue
		}
		sig[i] = crossSignal(fast[i-1], slow[i-1], fast[i], slow[i])
	}
	return ind, sig
}

// crossSignal compares two consecutive bars. NaN inputs compare false and
// give None.
func crossSignal(prevFast, prevSlow, fast, slow float64) Signal {
	switch {
	case prevFast <= prevSlow && fast > slow:
		return Buy
	case prevFast >= prevSlow && fast < slow:
		return Sell
	default:
		return None
	}
}
