package strategies

import (
	"time"

	"github.com/rustyeddy/cryptobot/market"
)

// Signal is the directional output for one bar.
type Signal int8

const (
	None Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Indicators holds the derived values for one bar. Only the fields of the
// strategy that produced the row are set; the rest stay zero.
type Indicators struct {
	FastMA float64 `json:"fast_ma,omitempty"`
	SlowMA float64 `json:"slow_ma,omitempty"`
	RSI    float64 `json:"rsi,omitempty"`
	Upper  float64 `json:"upper,omitempty"`
	Middle float64 `json:"middle,omitempty"`
	Lower  float64 `json:"lower,omitempty"`
}

// SignalBar is an input bar with its indicators and signal attached.
type SignalBar struct {
	market.Bar
	Indicators Indicators
	Signal     Signal
}

// SignalSeries is the engine output: bars past the warm-up window, in input
// order.
type SignalSeries []SignalBar

// Crossings returns the rows that carry a Buy or Sell.
func (s SignalSeries) Crossings() SignalSeries {
	out := make(SignalSeries, 0)
	for _, row := range s {
		if row.Signal != None {
			out = append(out, row)
		}
	}
	return out
}

// Last returns the final row.
func (s SignalSeries) Last() (SignalBar, bool) {
	if len(s) == 0 {
		return SignalBar{}, false
	}
	return s[len(s)-1], true
}

// Counts returns the number of Buy and Sell rows.
func (s SignalSeries) Counts() (buys, sells int) {
	for _, row := range s {
		switch row.Signal {
		case Buy:
			buys++
		case Sell:
			sells++
		}
	}
	return buys, sells
}

// Start and End return the first and last timestamps, zero when empty.
func (s SignalSeries) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Time
}

func (s SignalSeries) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Time
}
