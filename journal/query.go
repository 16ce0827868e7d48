package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

const runColumns = `run_id, created, strategy, kind, params, dataset, timeframe, start_time, end_time, bars,
	fee_rate, slippage_rate, trades, round_trips, wins, losses, open_position,
	final_equity, total_return, max_drawdown, org_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (BacktestRun, error) {
	var r BacktestRun
	var params string
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Kind, &params, &r.Dataset, &r.Timeframe,
		&r.Start, &r.End, &r.Bars,
		&r.FeeRate, &r.SlippageRate, &r.Trades, &r.RoundTrips, &r.Wins, &r.Losses, &r.OpenPosition,
		&r.FinalEquity, &r.TotalReturn, &r.MaxDrawdown, &r.OrgPath,
	)
	if params != "" {
		r.Params = []byte(params)
	}
	return r, err
}

// GetBacktestRun returns the summary of one run.
func (j *SQLite) GetBacktestRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM backtest_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return BacktestRun{}, fmt.Errorf("run %q not found", runID)
		}
		return BacktestRun{}, errors.Wrap(err, "scan run")
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	q := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRunID returns the fills of a run in order.
func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, bar_index, time, side, price, equity
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query trades")
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Index,
			&rec.Time,
			&rec.Side,
			&rec.Price,
			&rec.Equity,
		); err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRunID returns the equity curve of a run in bar order.
func (j *SQLite) ListEquityByRunID(ctx context.Context, runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, bar_index, time, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY bar_index ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query equity")
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Index, &e.Time, &e.Equity); err != nil {
			return nil, errors.Wrap(err, "scan equity")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
