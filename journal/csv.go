package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	tradesHeader = []string{"run_id", "seq", "index", "time", "side", "price", "equity"}
	equityHeader = []string{"run_id", "index", "time", "equity"}
	runsHeader   = []string{
		"run_id", "created", "strategy", "kind", "dataset", "timeframe", "start", "end", "bars",
		"fee_rate", "slippage_rate", "trades", "round_trips", "wins", "losses", "open_position",
		"final_equity", "total_return", "max_drawdown",
	}
)

// CSVJournal writes trades and equity points to two CSV files, and run
// summaries to a third when a runs path is given.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	runs   *csv.Writer
	files  []*os.File
}

func NewCSV(tradesPath, equityPath, runsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}
	var err error
	if j.trades, err = j.create(tradesPath, tradesHeader); err != nil {
		j.Close()
		return nil, err
	}
	if j.equity, err = j.create(equityPath, equityHeader); err != nil {
		j.Close()
		return nil, err
	}
	if runsPath != "" {
		if j.runs, err = j.create(runsPath, runsHeader); err != nil {
			j.Close()
			return nil, err
		}
	}
	return j, nil
}

func (j *CSVJournal) create(path string, header []string) (*csv.Writer, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create journal file")
	}
	j.files = append(j.files, fh)

	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrapf(err, "write header to %s", path)
	}
	w.Flush()
	return w, w.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.RunID,
		strconv.Itoa(t.Seq),
		strconv.Itoa(t.Index),
		ts(t.Time),
		t.Side,
		f(t.Price),
		f(t.Equity),
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Index),
		ts(e.Time),
		f(e.Equity),
	})
}

func (j *CSVJournal) RecordRun(r BacktestRun) error {
	if j.runs == nil {
		return nil
	}
	return write(j.runs, []string{
		r.RunID,
		ts(r.Created),
		r.Strategy,
		r.Kind,
		r.Dataset,
		r.Timeframe,
		ts(r.Start),
		ts(r.End),
		strconv.Itoa(r.Bars),
		f(r.FeeRate),
		f(r.SlippageRate),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.RoundTrips),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		strconv.FormatBool(r.OpenPosition),
		f(r.FinalEquity),
		f(r.TotalReturn),
		f(r.MaxDrawdown),
	})
}

func (j *CSVJournal) Close() error {
	var first error
	for _, w := range []*csv.Writer{j.trades, j.equity, j.runs} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = err
		}
	}
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
