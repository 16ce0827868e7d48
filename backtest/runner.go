package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/metrics"
	"github.com/rustyeddy/cryptobot/pkg/id"
	"github.com/rustyeddy/cryptobot/strategies"
)

// Report is everything one hosted run produced.
type Report struct {
	RunID     string
	Created   time.Time
	Strategy  string // strategy label, e.g. SMA(20/50)
	Kind      strategies.Kind
	Params    strategies.Params
	Costs     Costs
	Dataset   string
	Timeframe string
	OrgPath   string

	Signals strategies.SignalSeries
	Result  Result
	Summary Summary
}

// BacktestRun converts the report into its journal row. Params sections
// the strategy does not read are not validated, so a NaN there fails the
// JSON encoding.
func (r Report) BacktestRun() (journal.BacktestRun, error) {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return journal.BacktestRun{}, fmt.Errorf("encode params: %w", err)
	}
	var notes []string
	if r.Summary.Open {
		notes = append(notes, "position still open at the last bar; final equity is a mark")
	}
	if r.Summary.Trades == 0 {
		notes = append(notes, "no fills")
	}
	return journal.BacktestRun{
		RunID:        r.RunID,
		Created:      r.Created,
		Strategy:     r.Strategy,
		Kind:         string(r.Kind),
		Params:       params,
		Dataset:      r.Dataset,
		Timeframe:    r.Timeframe,
		Start:        r.Summary.Start,
		End:          r.Summary.End,
		Bars:         r.Summary.Bars,
		FeeRate:      r.Costs.FeeRate,
		SlippageRate: r.Costs.SlippageRate,
		Trades:       r.Summary.Trades,
		RoundTrips:   r.Summary.RoundTrips,
		Wins:         r.Summary.Wins,
		Losses:       r.Summary.Losses,
		OpenPosition: r.Summary.Open,
		FinalEquity:  r.Summary.FinalEquity,
		TotalReturn:  r.Summary.TotalReturn,
		MaxDrawdown:  r.Summary.MaxDrawdown,
		OrgPath:      r.OrgPath,
		Notes:        notes,
	}, nil
}

// TradeRecords converts the fills into journal rows.
func (r Report) TradeRecords() []journal.TradeRecord {
	out := make([]journal.TradeRecord, len(r.Result.Trades))
	for i, t := range r.Result.Trades {
		out[i] = journal.TradeRecord{
			RunID:  r.RunID,
			Seq:    i + 1,
			Index:  t.Index,
			Time:   t.Time,
			Side:   t.Side.String(),
			Price:  t.Price,
			Equity: t.Equity,
		}
	}
	return out
}

// EquitySnapshots converts the equity curve into journal rows.
func (r Report) EquitySnapshots() []journal.EquitySnapshot {
	out := make([]journal.EquitySnapshot, len(r.Result.Equity))
	for i, p := range r.Result.Equity {
		out[i] = journal.EquitySnapshot{RunID: r.RunID, Index: i, Time: p.Time, Equity: p.Equity}
	}
	return out
}

// batchRecorder is implemented by journals that can store a run atomically.
type batchRecorder interface {
	RecordAll(ctx context.Context, r journal.BacktestRun, trades []journal.TradeRecord, equity []journal.EquitySnapshot) error
}

// Runner hosts one signals+backtest run: it assigns a run id, logs,
// journals and records metrics. The computation itself is Run.
type Runner struct {
	Kind    strategies.Kind
	Params  strategies.Params
	Costs   Costs
	Dataset string

	// OrgPath, when set, receives an Org-mode report of the run.
	OrgPath string

	Journal journal.Journal  // optional
	Metrics *metrics.Metrics // optional
	Log     *zap.Logger      // optional

	// Now is the clock used for Created and the run id.
	Now func() time.Time
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Run computes signals for series, simulates them and records the outcome.
// On any error, including a failed journal write, the returned Report is
// zero.
func (r *Runner) Run(ctx context.Context, series market.Series) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	log := r.logger()

	strat, err := strategies.New(r.Kind, r.Params)
	if err != nil {
		r.Metrics.ObserveFailure(string(r.Kind))
		return Report{}, err
	}
	if err := r.Costs.Validate(); err != nil {
		r.Metrics.ObserveFailure(strat.Name())
		return Report{}, err
	}

	created := r.now().UTC()
	rep := Report{
		RunID:     id.NewAt(created),
		Created:   created,
		Strategy:  strat.Name(),
		Kind:      r.Kind,
		Params:    r.Params,
		Costs:     r.Costs,
		Dataset:   r.Dataset,
		Timeframe: series.Timeframe(),
		OrgPath:   r.OrgPath,
	}
	log = log.With(zap.String("run_id", rep.RunID), zap.String("strategy", rep.Strategy))
	log.Info("backtest start", zap.Int("bars", len(series)), zap.String("dataset", r.Dataset))

	began := time.Now()
	rep.Signals, err = strategies.Run(strat, series)
	if err != nil {
		r.Metrics.ObserveFailure(rep.Strategy)
		log.Error("compute signals", zap.Error(err))
		return Report{}, err
	}
	rep.Result, err = Run(rep.Signals, r.Costs)
	if err != nil {
		r.Metrics.ObserveFailure(rep.Strategy)
		log.Error("simulate", zap.Error(err))
		return Report{}, err
	}
	elapsed := time.Since(began)
	rep.Summary = Summarize(rep.Result)

	for _, t := range rep.Result.Trades {
		log.Debug("fill",
			zap.Int("bar", t.Index),
			zap.Time("time", t.Time),
			zap.Stringer("side", t.Side),
			zap.Float64("price", t.Price),
			zap.Float64("equity", t.Equity),
		)
	}

	if err := r.record(ctx, rep); err != nil {
		r.Metrics.ObserveFailure(rep.Strategy)
		log.Error("journal", zap.Error(err))
		return Report{}, err
	}

	buys, sells := rep.Result.Fills()
	r.Metrics.ObserveRun(rep.Strategy, elapsed, len(rep.Signals), buys, sells, rep.Summary.FinalEquity)

	log.Info("backtest done",
		zap.Int("signal_bars", len(rep.Signals)),
		zap.Int("trades", rep.Summary.Trades),
		zap.Int("round_trips", rep.Summary.RoundTrips),
		zap.Bool("open", rep.Summary.Open),
		zap.Float64("final_equity", rep.Summary.FinalEquity),
		zap.Float64("max_drawdown", rep.Summary.MaxDrawdown),
		zap.Duration("elapsed", elapsed),
	)
	return rep, nil
}

func (r *Runner) record(ctx context.Context, rep Report) error {
	run, err := rep.BacktestRun()
	if err != nil {
		return err
	}
	trades := rep.TradeRecords()

	if r.Journal != nil {
		if b, ok := r.Journal.(batchRecorder); ok {
			if err := b.RecordAll(ctx, run, trades, rep.EquitySnapshots()); err != nil {
				return err
			}
		} else {
			for _, t := range trades {
				if err := r.Journal.RecordTrade(t); err != nil {
					return fmt.Errorf("record trade %d: %w", t.Seq, err)
				}
			}
			for _, e := range rep.EquitySnapshots() {
				if err := r.Journal.RecordEquity(e); err != nil {
					return fmt.Errorf("record equity %d: %w", e.Index, err)
				}
			}
			if err := r.Journal.RecordRun(run); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
		}
	}

	if rep.OrgPath != "" {
		if err := run.WriteBacktestOrg(trades); err != nil {
			return err
		}
	}
	return nil
}
