// Package backtest replays a signal series through a single-position,
// long-only simulator and hosts the runs: journaling, metrics and
// parameter sweeps.
package backtest

import (
	"github.com/rustyeddy/cryptobot/strategies"
)

// Result is the outcome of one simulation.
type Result struct {
	Equity []EquityPoint `json:"equity"` // one point per input bar
	Trades []Trade       `json:"trades"`
	Final  State         `json:"-"`
}

// FinalEquity is the last mark-to-market value, 1 for an empty run.
func (r Result) FinalEquity() float64 {
	if len(r.Equity) == 0 {
		return 1
	}
	return r.Equity[len(r.Equity)-1].Equity
}

// Fills counts the executed buys and sells.
func (r Result) Fills() (buys, sells int) {
	for _, t := range r.Trades {
		switch t.Side {
		case strategies.Buy:
			buys++
		case strategies.Sell:
			sells++
		}
	}
	return buys, sells
}

// Open reports whether the run ended long.
func (r Result) Open() bool { return r.Final.Position == Long }

// Run folds State.Step over signals. It stops at the first bar whose close
// is not a positive finite price and returns a *errs.DomainError. A
// position still open after the last bar stays open; its last equity point
// is a mark, not an exit.
func Run(signals strategies.SignalSeries, c Costs) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		Equity: make([]EquityPoint, 0, len(signals)),
		Trades: []Trade{},
	}
	state := NewState()
	for i, row := range signals {
		next, fill, err := state.Step(i, row.Time, row.Close, row.Signal, c)
		if err != nil {
			return Result{}, err
		}
		if fill != nil {
			res.Trades = append(res.Trades, *fill)
		}
		state = next
		res.Equity = append(res.Equity, EquityPoint{Time: row.Time, Equity: state.Mark(row.Close)})
	}
	res.Final = state
	return res, nil
}
