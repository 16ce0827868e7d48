package indicators

import (
	"fmt"
	"math"
)

// RSI is a streaming relative strength index. Average gain and loss are
// simple rolling means of the last period close-to-close moves.
//
// When the average loss is zero the RSI is 100, including a perfectly flat
// window where the average gain is zero too.
type RSI struct {
	period    int
	gains     window
	losses    window
	prevClose float64
	havePrev  bool
}

// NewRSI creates an RSI over period deltas; it needs period+1 closes.
func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  newWindow(period),
		losses: newWindow(period),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup includes the seed close that has no delta.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.gains.reset()
	r.losses.reset()
	r.prevClose = 0
	r.havePrev = false
}

func (r *RSI) Update(v float64) {
	if !r.havePrev {
		r.prevClose = v
		r.havePrev = true
		return
	}
	delta := v - r.prevClose
	r.prevClose = v

	r.gains.push(math.Max(delta, 0))
	r.losses.push(math.Max(-delta, 0))
}

func (r *RSI) Ready() bool { return r.period > 0 && r.gains.full() }

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return math.NaN()
	}
	return rsiFrom(r.gains.mean(), r.losses.mean())
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// RelativeStrength returns the RSI of values over period. The first period
// outputs are NaN.
func RelativeStrength(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	return Batch(NewRSI(period), values), nil
}
