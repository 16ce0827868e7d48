package market

import (
	"math"
	"time"
)

// Bar is one OHLCV interval.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func (b Bar) finite() bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FromCloses builds a series with one bar per close, spaced by step from
// start. Open, high and low equal the close.
func FromCloses(start time.Time, step time.Duration, closes []float64) Series {
	s := make(Series, len(closes))
	for i, c := range closes {
		s[i] = Bar{
			Time:  start.Add(time.Duration(i) * step),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return s
}
