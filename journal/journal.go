package journal

import (
	"fmt"
	"time"
)

// TradeRecord is one simulated fill. Seq orders fills within a run.
type TradeRecord struct {
	RunID  string
	Seq    int
	Index  int // bar index in the signal series
	Time   time.Time
	Side   string // BUY or SELL
	Price  float64
	Equity float64 // realized equity right after the fill
}

// EquitySnapshot is one mark-to-market point of a run.
type EquitySnapshot struct {
	RunID  string
	Index  int
	Time   time.Time
	Equity float64
}

// BacktestRun mirrors the backtest_runs table.
type BacktestRun struct {
	RunID     string
	Created   time.Time
	Strategy  string // label, e.g. SMA(20/50)
	Kind      string
	Params    []byte // strategy params as JSON
	Dataset   string
	Timeframe string

	Start time.Time
	End   time.Time
	Bars  int

	FeeRate      float64
	SlippageRate float64

	Trades       int
	RoundTrips   int
	Wins         int
	Losses       int
	OpenPosition bool

	FinalEquity float64
	TotalReturn float64 // FinalEquity - 1
	MaxDrawdown float64 // absolute, in equity units

	OrgPath string
	Notes   []string
}

// ReturnPct is TotalReturn in percent.
func (r BacktestRun) ReturnPct() float64 { return r.TotalReturn * 100 }

// WinRate is wins over closed round trips, 0 when none closed.
func (r BacktestRun) WinRate() float64 {
	if r.RoundTrips == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.RoundTrips)
}

type Journal interface {
	RecordRun(BacktestRun) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that drops everything.
type Discard struct{}

func (Discard) RecordRun(BacktestRun) error       { return nil }
func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }

// Kind selects a journal backend.
type Kind string

const (
	KindNone   Kind = "none"
	KindCSV    Kind = "csv"
	KindSQLite Kind = "sqlite"
)

// Options configure Open.
type Options struct {
	Type       Kind   `yaml:"type" json:"type"`
	TradesFile string `yaml:"trades_file" json:"trades_file" split_words:"true"`
	EquityFile string `yaml:"equity_file" json:"equity_file" split_words:"true"`
	RunsFile   string `yaml:"runs_file" json:"runs_file" split_words:"true"`
	DBPath     string `yaml:"db_path" json:"db_path" split_words:"true"`
	OrgPath    string `yaml:"org_path" json:"org_path" split_words:"true"`
}

// Open builds the journal named by o.Type.
func Open(o Options) (Journal, error) {
	switch o.Type {
	case "", KindNone:
		return Discard{}, nil
	case KindCSV:
		return NewCSV(o.TradesFile, o.EquityFile, o.RunsFile)
	case KindSQLite:
		return NewSQLite(o.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q (use none, csv or sqlite)", o.Type)
	}
}
