package indicators

import (
	"fmt"
	"math"
)

// SMA is a streaming simple moving average.
type SMA struct {
	period int
	win    window
}

// NewSMA creates a simple moving average over period values.
func NewSMA(period int) *SMA {
	return &SMA{period: period, win: newWindow(period)}
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }
func (m *SMA) Warmup() int  { return m.period }
func (m *SMA) Reset()       { m.win.reset() }
func (m *SMA) Update(v float64) {
	m.win.push(v)
}
func (m *SMA) Ready() bool { return m.period > 0 && m.win.full() }

func (m *SMA) Value() float64 {
	if !m.Ready() {
		return math.NaN()
	}
	return m.win.mean()
}

// MovingAverage returns the simple moving average of values over period.
// The first period-1 outputs are NaN.
func MovingAverage(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	return Batch(NewSMA(period), values), nil
}
