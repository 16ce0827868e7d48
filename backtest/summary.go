package backtest

import (
	"time"

	"github.com/rustyeddy/cryptobot/strategies"
)

// Summary condenses a Result into headline numbers.
type Summary struct {
	Bars        int
	Start       time.Time
	End         time.Time
	Trades      int // fills, Buy and Sell
	RoundTrips  int // closed Buy/Sell pairs
	Wins        int
	Losses      int
	Open        bool
	FinalEquity float64
	TotalReturn float64 // FinalEquity - 1
	MaxDrawdown float64 // largest drop from a running peak, in equity units
}

// WinRate is wins over closed round trips, 0 when none closed.
func (s Summary) WinRate() float64 {
	if s.RoundTrips == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.RoundTrips)
}

// Summarize computes the Summary of r. A round trip is a win when the
// realized equity after the Sell is above the realized equity before its
// Buy, fees included; breakeven trips count as neither.
func Summarize(r Result) Summary {
	s := Summary{
		Bars:        len(r.Equity),
		Trades:      len(r.Trades),
		Open:        r.Open(),
		FinalEquity: r.FinalEquity(),
		MaxDrawdown: MaxDrawdown(r.Equity),
	}
	s.TotalReturn = s.FinalEquity - 1
	if len(r.Equity) > 0 {
		s.Start = r.Equity[0].Time
		s.End = r.Equity[len(r.Equity)-1].Time
	}

	realized, base := 1.0, 1.0
	for _, t := range r.Trades {
		switch t.Side {
		case strategies.Buy:
			base = realized
		case strategies.Sell:
			s.RoundTrips++
			switch {
			case t.Equity > base:
				s.Wins++
			case t.Equity < base:
				s.Losses++
			}
		}
		realized = t.Equity
	}
	return s
}

// MaxDrawdown returns max(peak - equity) over the curve, where peak is the
// running maximum.
func MaxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak, dd := curve[0].Equity, 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if d := peak - p.Equity; d > dd {
			dd = d
		}
	}
	return dd
}
