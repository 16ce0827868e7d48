package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/metrics"
	"github.com/rustyeddy/cryptobot/strategies"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Backtest a grid of strategy parameters concurrently",
	Long: `Run one independent backtest per parameter combination over the same
price series and rank the results by final equity.

Integer lists accept "5,10,20" or a from:to:step range such as "5:20:5".

Examples:
  cryptobot sweep -d btc.csv --fasts 5:20:5 --slows 30:60:10
  cryptobot sweep -d btc.csv -s rsi --periods 7,14,21 --oversold-levels 20,30 --overbought-levels 70,80
  cryptobot sweep -d btc.csv -s bollinger --bb-periods 10:30:5 --bb-ks 1.5,2,2.5 --top 5
  cryptobot sweep -d btc.csv --workers 4 --metrics-addr :9102`,
	RunE: runSweep,
}

var (
	swFlags runFlags

	swFasts       string
	swSlows       string
	swPeriods     string
	swOversold    string
	swOverbought  string
	swBBPeriods   string
	swBBKs        string
	swWorkers     int
	swTop         int
	swMetricsAddr string
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	swFlags.register(sweepCmd.Flags())
	swFlags.registerJournal(sweepCmd.Flags())

	f := sweepCmd.Flags()
	f.StringVar(&swFasts, "fasts", "5:20:5", "sma_crossover: fast periods")
	f.StringVar(&swSlows, "slows", "30:60:10", "sma_crossover: slow periods")
	f.StringVar(&swPeriods, "periods", "7,14,21", "rsi: periods")
	f.StringVar(&swOversold, "oversold-levels", "20,30", "rsi: oversold levels")
	f.StringVar(&swOverbought, "overbought-levels", "70,80", "rsi: overbought levels")
	f.StringVar(&swBBPeriods, "bb-periods", "10:30:10", "bollinger: periods")
	f.StringVar(&swBBKs, "bb-ks", "1.5,2,2.5", "bollinger: standard deviation multipliers")
	f.IntVarP(&swWorkers, "workers", "w", 0, "concurrent backtests (0 = GOMAXPROCS)")
	f.IntVar(&swTop, "top", 10, "print only the best N results (0 = all)")
	f.StringVar(&swMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while sweeping")
}

// sweepGrid builds the parameter grid for kind from the sweep flags.
func sweepGrid(kind strategies.Kind, base strategies.Params) ([]strategies.Params, error) {
	switch kind {
	case strategies.KindRSI:
		periods, err := parseInts("periods", swPeriods)
		if err != nil {
			return nil, err
		}
		lo, err := parseFloats("oversold-levels", swOversold)
		if err != nil {
			return nil, err
		}
		hi, err := parseFloats("overbought-levels", swOverbought)
		if err != nil {
			return nil, err
		}
		return strategies.RSIGrid(base, periods, lo, hi), nil
	case strategies.KindBollinger:
		periods, err := parseInts("bb-periods", swBBPeriods)
		if err != nil {
			return nil, err
		}
		ks, err := parseFloats("bb-ks", swBBKs)
		if err != nil {
			return nil, err
		}
		return strategies.BollingerGrid(base, periods, ks), nil
	default:
		fasts, err := parseInts("fasts", swFasts)
		if err != nil {
			return nil, err
		}
		slows, err := parseInts("slows", swSlows)
		if err != nil {
			return nil, err
		}
		return strategies.CrossoverGrid(base, fasts, slows), nil
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := swFlags.apply(cmd, cfg); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	kind, err := cfg.Strategy.Kind()
	if err != nil {
		return err
	}
	grid, err := sweepGrid(kind, cfg.Strategy.Params)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("parameter grid for %s is empty", kind)
	}

	series, dataset, err := loadSeries(cfg)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	var m *metrics.Metrics
	if swMetricsAddr != "" {
		m = metrics.New()
		srv := metrics.NewServer(swMetricsAddr, m, log)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				log.Warn("metrics server stop", zap.Error(err))
			}
		}()
	}

	results, err := backtest.Sweep(cmd.Context(), series, grid, backtest.SweepOptions{
		Kind:    kind,
		Costs:   cfg.Costs,
		Dataset: dataset,
		Workers: swWorkers,
		Journal: j,
		Metrics: m,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s sweep over %s: %d runs\n", kind, dataset, len(results))
	if swTop > 0 && len(results) > swTop {
		results = results[:swTop]
	}
	backtest.PrintSweep(out, results)
	return nil
}
