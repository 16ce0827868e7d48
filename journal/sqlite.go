package journal

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLite stores runs, fills and equity curves in one database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite journal: empty db path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, seq, bar_index, time, side, price, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.Index, t.Time.UTC(), t.Side, t.Price, t.Equity,
	)
	return errors.Wrap(err, "insert trade")
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, bar_index, time, equity)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Index, e.Time.UTC(), e.Equity,
	)
	return errors.Wrap(err, "insert equity")
}

// RecordRun upserts the run summary.
func (j *SQLite) RecordRun(r BacktestRun) error {
	return j.RecordBacktest(context.Background(), r)
}

func (j *SQLite) RecordBacktest(ctx context.Context, r BacktestRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO backtest_runs
		(run_id, created, strategy, kind, params, dataset, timeframe, start_time, end_time, bars,
		 fee_rate, slippage_rate, trades, round_trips, wins, losses, open_position,
		 final_equity, total_return, max_drawdown, org_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Kind, string(r.Params), r.Dataset, r.Timeframe,
		r.Start.UTC(), r.End.UTC(), r.Bars,
		r.FeeRate, r.SlippageRate, r.Trades, r.RoundTrips, r.Wins, r.Losses, r.OpenPosition,
		r.FinalEquity, r.TotalReturn, r.MaxDrawdown, r.OrgPath,
	)
	return errors.Wrapf(err, "insert run %s", r.RunID)
}

// RecordAll stores a run with its fills and equity curve in one transaction.
func (j *SQLite) RecordAll(ctx context.Context, r BacktestRun, trades []TradeRecord, equity []EquitySnapshot) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	tstmt, err := tx.PrepareContext(ctx, `INSERT INTO trades (run_id, seq, bar_index, time, side, price, equity) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare trades")
	}
	defer tstmt.Close()
	for _, t := range trades {
		if _, err := tstmt.ExecContext(ctx, t.RunID, t.Seq, t.Index, t.Time.UTC(), t.Side, t.Price, t.Equity); err != nil {
			return errors.Wrap(err, "insert trade")
		}
	}

	estmt, err := tx.PrepareContext(ctx, `INSERT INTO equity (run_id, bar_index, time, equity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare equity")
	}
	defer estmt.Close()
	for _, e := range equity {
		if _, err := estmt.ExecContext(ctx, e.RunID, e.Index, e.Time.UTC(), e.Equity); err != nil {
			return errors.Wrap(err, "insert equity")
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO backtest_runs
		(run_id, created, strategy, kind, params, dataset, timeframe, start_time, end_time, bars,
		 fee_rate, slippage_rate, trades, round_trips, wins, losses, open_position,
		 final_equity, total_return, max_drawdown, org_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Kind, string(r.Params), r.Dataset, r.Timeframe,
		r.Start.UTC(), r.End.UTC(), r.Bars,
		r.FeeRate, r.SlippageRate, r.Trades, r.RoundTrips, r.Wins, r.Losses, r.OpenPosition,
		r.FinalEquity, r.TotalReturn, r.MaxDrawdown, r.OrgPath,
	); err != nil {
		return errors.Wrapf(err, "insert run %s", r.RunID)
	}
	return tx.Commit()
}

// ExportBacktestOrg loads a run with its fills and returns the Org report.
func (j *SQLite) ExportBacktestOrg(ctx context.Context, runID string) (string, error) {
	run, err := j.GetBacktestRun(ctx, runID)
	if err != nil {
		return "", err
	}
	trades, err := j.ListTradesByRunID(ctx, runID)
	if err != nil {
		return "", err
	}
	return RenderBacktestOrg(run, trades)
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
