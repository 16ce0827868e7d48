package indicators

import (
	"fmt"
	"math"
)

// StdDev is a streaming rolling sample standard deviation (n-1 denominator).
type StdDev struct {
	period int
	win    window
}

// NewStdDev creates a rolling sample standard deviation. Period must be at
// least 2 for the value to be defined.
func NewStdDev(period int) *StdDev {
	return &StdDev{period: period, win: newWindow(period)}
}

func (s *StdDev) Name() string     { return fmt.Sprintf("STDDEV(%d)", s.period) }
func (s *StdDev) Warmup() int      { return s.period }
func (s *StdDev) Reset()           { s.win.reset() }
func (s *StdDev) Update(v float64) { s.win.push(v) }
func (s *StdDev) Ready() bool      { return s.period >= 2 && s.win.full() }

func (s *StdDev) Value() float64 {
	if !s.Ready() {
		return math.NaN()
	}
	mean := s.win.mean()
	ss := 0.0
	s.win.each(func(v float64) {
		d := v - mean
		ss += d * d
	})
	return math.Sqrt(ss / float64(s.win.count-1))
}

// RollingStdDev returns the rolling sample standard deviation of values.
func RollingStdDev(values []float64, period int) ([]float64, error) {
	if period < 2 {
		return nil, fmt.Errorf("period must be at least 2, got %d", period)
	}
	return Batch(NewStdDev(period), values), nil
}
