package indicators

import (
	"fmt"
	"math"
)

// Bollinger tracks a moving average with bands k sample standard deviations
// either side. Value reports the middle band.
type Bollinger struct {
	period int
	k      float64
	ma     *SMA
	sd     *StdDev
}

// NewBollinger creates bands over period closes at k standard deviations.
func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{
		period: period,
		k:      k,
		ma:     NewSMA(period),
		sd:     NewStdDev(period),
	}
}

func (b *Bollinger) Name() string { return fmt.Sprintf("BB(%d,%g)", b.period, b.k) }
func (b *Bollinger) Warmup() int  { return b.period }

func (b *Bollinger) Reset() {
	b.ma.Reset()
	b.sd.Reset()
}

func (b *Bollinger) Update(v float64) {
	b.ma.Update(v)
	b.sd.Update(v)
}

func (b *Bollinger) Ready() bool    { return b.ma.Ready() && b.sd.Ready() }
func (b *Bollinger) Value() float64 { return b.ma.Value() }

// Bands returns (upper, middle, lower). All are NaN until ready.
func (b *Bollinger) Bands() (upper, middle, lower float64) {
	if !b.Ready() {
		nan := math.NaN()
		return nan, nan, nan
	}
	mid := b.ma.Value()
	width := b.k * b.sd.Value()
	return mid + width, mid, mid - width
}

// BollingerBands returns the upper, middle and lower bands for values.
// The first period-1 entries of each are NaN.
func BollingerBands(values []float64, period int, k float64) (upper, middle, lower []float64, err error) {
	if period < 2 {
		return nil, nil, nil, fmt.Errorf("period must be at least 2, got %d", period)
	}
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, nil, nil, fmt.Errorf("std-dev multiplier must be finite and >= 0, got %v", k)
	}

	bb := NewBollinger(period, k)
	upper = make([]float64, len(values))
	middle = make([]float64, len(values))
	lower = make([]float64, len(values))
	for i, v := range values {
		bb.Update(v)
		upper[i], middle[i], lower[i] = bb.Bands()
	}
	return upper, middle, lower, nil
}
