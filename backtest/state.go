package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/cryptobot/pkg/errs"
	"github.com/rustyeddy/cryptobot/strategies"
)

// Position is Flat or Long. There is never more than one open position.
type Position int8

const (
	Flat Position = iota
	Long
)

func (p Position) String() string {
	if p == Long {
		return "LONG"
	}
	return "FLAT"
}

// Costs are proportional transaction costs applied on every fill.
type Costs struct {
	FeeRate      float64 `yaml:"fee_rate" json:"fee_rate" split_words:"true"`
	SlippageRate float64 `yaml:"slippage_rate" json:"slippage_rate" split_words:"true"`
}

// DefaultCosts are 4 bps fee and 3 bps slippage.
func DefaultCosts() Costs {
	return Costs{FeeRate: 0.0004, SlippageRate: 0.0003}
}

// Validate requires both rates in [0, 1).
func (c Costs) Validate() error {
	if !unitRate(c.FeeRate) {
		return errs.Configf("costs.fee_rate", "must be within [0,1), got %v", c.FeeRate)
	}
	if !unitRate(c.SlippageRate) {
		return errs.Configf("costs.slippage_rate", "must be within [0,1), got %v", c.SlippageRate)
	}
	return nil
}

func unitRate(v float64) bool { return v >= 0 && v < 1 }

// Trade is a fill recorded on a position transition. Price includes
// slippage; Equity is the realized equity right after the fill.
type Trade struct {
	Time   time.Time         `json:"time"`
	Index  int               `json:"index"`
	Side   strategies.Signal `json:"side"`
	Price  float64           `json:"price"`
	Equity float64           `json:"equity"`
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s @ %.6f (bar %d)", t.Time.UTC().Format(time.RFC3339), t.Side, t.Price, t.Index)
}

// EquityPoint is the mark-to-market equity at one bar.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// State is the simulator state between bars. Equity is realized equity:
// it changes only on fills. The zero value is not usable; start from
// NewState.
type State struct {
	Position   Position
	EntryPrice float64
	Equity     float64
}

// NewState returns a flat state with unit equity.
func NewState() State {
	return State{Position: Flat, Equity: 1}
}

// Step applies the signal at bar i and returns the next state, plus the
// fill if the position changed. It does not modify s.
//
//	Flat + Buy  -> Long: entry = close*(1+slip), equity *= 1-fee
//	Long + Sell -> Flat: exit = close*(1-slip), equity *= exit/entry*(1-fee)
//
// Every other combination leaves the state unchanged.
func (s State) Step(i int, at time.Time, close float64, sig strategies.Signal, c Costs) (State, *Trade, error) {
	if !validPrice(close) {
		return s, nil, &errs.DomainError{Index: i, Time: at, Reason: fmt.Sprintf("close %v is not a positive finite price", close)}
	}

	switch {
	case s.Position == Flat && sig == strategies.Buy:
		entry := close * (1 + c.SlippageRate)
		next := State{
			Position:   Long,
			EntryPrice: entry,
			Equity:     s.Equity * (1 - c.FeeRate),
		}
		return next, &Trade{Time: at, Index: i, Side: strategies.Buy, Price: entry, Equity: next.Equity}, nil

	case s.Position == Long && sig == strategies.Sell:
		if !validPrice(s.EntryPrice) {
			return s, nil, &errs.DomainError{Index: i, Time: at, Reason: fmt.Sprintf("entry price %v is not positive", s.EntryPrice)}
		}
		exit := close * (1 - c.SlippageRate)
		next := State{
			Position: Flat,
			Equity:   s.Equity * (exit / s.EntryPrice) * (1 - c.FeeRate),
		}
		return next, &Trade{Time: at, Index: i, Side: strategies.Sell, Price: exit, Equity: next.Equity}, nil
	}

	return s, nil, nil
}

// Mark returns the observed equity at close: realized equity when flat,
// revalued by close/entry when long.
func (s State) Mark(close float64) float64 {
	if s.Position == Long {
		return s.Equity * (close / s.EntryPrice)
	}
	return s.Equity
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
