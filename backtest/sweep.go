package backtest

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/metrics"
	"github.com/rustyeddy/cryptobot/strategies"
)

// SweepResult is one point of a parameter sweep.
type SweepResult struct {
	Params strategies.Params
	Report Report
}

// SweepOptions configure Sweep. Workers <= 0 uses GOMAXPROCS.
type SweepOptions struct {
	Kind    strategies.Kind
	Costs   Costs
	Dataset string
	Workers int

	Journal journal.Journal
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Sweep runs one independent backtest per params over the same series and
// returns the results sorted by final equity, best first. The first error
// cancels the remaining jobs and is returned.
func Sweep(ctx context.Context, series market.Series, grid []strategies.Params, o SweepOptions) ([]SweepResult, error) {
	if err := o.Costs.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("sweep start", zap.String("kind", string(o.Kind)), zap.Int("jobs", len(grid)), zap.Int("workers", workers))

	// journals are not safe for concurrent writers
	var jmu sync.Mutex
	var j journal.Journal
	if o.Journal != nil {
		j = &lockedJournal{mu: &jmu, j: o.Journal}
	}

	results := make([]SweepResult, len(grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range grid {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o.Metrics.JobStarted()
			defer o.Metrics.JobDone()

			r := &Runner{
				Kind:    o.Kind,
				Params:  p,
				Costs:   o.Costs,
				Dataset: o.Dataset,
				Journal: j,
				Metrics: o.Metrics,
				Log:     log,
			}
			rep, err := r.Run(gctx, series)
			if err != nil {
				return err
			}
			results[i] = SweepResult{Params: p, Report: rep}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByFinalEquity(results)
	if len(results) > 0 {
		best := results[0].Report
		log.Info("sweep done", zap.String("best", best.Strategy), zap.Float64("final_equity", best.Summary.FinalEquity))
	}
	return results, nil
}

// SortByFinalEquity orders results best first; ties keep grid order.
func SortByFinalEquity(results []SweepResult) {
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Report.Summary.FinalEquity > results[b].Report.Summary.FinalEquity
	})
}

type lockedJournal struct {
	mu *sync.Mutex
	j  journal.Journal
}

func (l *lockedJournal) RecordRun(r journal.BacktestRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.j.RecordRun(r)
}

func (l *lockedJournal) RecordTrade(t journal.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.j.RecordTrade(t)
}

func (l *lockedJournal) RecordEquity(e journal.EquitySnapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.j.RecordEquity(e)
}

func (l *lockedJournal) Close() error { return nil }

// RecordAll forwards to the wrapped journal when it supports batches.
func (l *lockedJournal) RecordAll(ctx context.Context, r journal.BacktestRun, trades []journal.TradeRecord, equity []journal.EquitySnapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.j.(batchRecorder); ok {
		return b.RecordAll(ctx, r, trades, equity)
	}
	for _, t := range trades {
		if err := l.j.RecordTrade(t); err != nil {
			return err
		}
	}
	for _, e := range equity {
		if err := l.j.RecordEquity(e); err != nil {
			return err
		}
	}
	return l.j.RecordRun(r)
}
