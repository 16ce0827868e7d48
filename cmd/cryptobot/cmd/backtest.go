package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/journal"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single-position backtest over a price CSV",
	Long: `Compute signals for the selected strategy and replay them through the
long-only simulator with proportional fees and slippage.

Examples:
  cryptobot backtest --data data/sample.csv
  cryptobot backtest -d btc.csv -s rsi --rsi-period 14 --oversold 25
  cryptobot backtest -d btc.csv --fast 10 --slow 30 --journal sqlite --db runs.sqlite
  cryptobot backtest -c run.yaml --org reports/run.org`,
	RunE: runBacktest,
}

var (
	btFlags runFlags
	btJSON  bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	btFlags.register(backtestCmd.Flags())
	btFlags.registerJournal(backtestCmd.Flags())
	backtestCmd.Flags().BoolVar(&btJSON, "json", false, "print the summary and fills as JSON")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := btFlags.apply(cmd, cfg); err != nil {
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

	series, dataset, err := loadSeries(cfg)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	log.Debug("loaded series", zap.String("dataset", dataset), zap.Int("bars", len(series)))

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	runner := &backtest.Runner{
		Kind:    kind,
		Params:  cfg.Strategy.Params,
		Costs:   cfg.Costs,
		Dataset: dataset,
		OrgPath: cfg.Journal.OrgPath,
		Journal: j,
		Log:     log,
	}
	rep, err := runner.Run(cmd.Context(), series)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if btJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(newBacktestJSON(rep))
	}
	backtest.PrintResult(out, rep)
	return nil
}

type fillJSON struct {
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
	Side   string    `json:"side"`
	Price  float64   `json:"price"`
	Equity float64   `json:"equity"`
}

type backtestJSON struct {
	RunID        string     `json:"run_id"`
	Strategy     string     `json:"strategy"`
	Dataset      string     `json:"dataset"`
	Bars         int        `json:"bars"`
	Trades       int        `json:"trades"`
	RoundTrips   int        `json:"round_trips"`
	Wins         int        `json:"wins"`
	Losses       int        `json:"losses"`
	OpenPosition bool       `json:"open_position"`
	FinalEquity  float64    `json:"final_equity"`
	TotalReturn  float64    `json:"total_return"`
	MaxDrawdown  float64    `json:"max_drawdown"`
	Fills        []fillJSON `json:"fills"`
}

func newBacktestJSON(rep backtest.Report) backtestJSON {
	s := rep.Summary
	out := backtestJSON{
		RunID:        rep.RunID,
		Strategy:     rep.Strategy,
		Dataset:      rep.Dataset,
		Bars:         s.Bars,
		Trades:       s.Trades,
		RoundTrips:   s.RoundTrips,
		Wins:         s.Wins,
		Losses:       s.Losses,
		OpenPosition: s.Open,
		FinalEquity:  s.FinalEquity,
		TotalReturn:  s.TotalReturn,
		MaxDrawdown:  s.MaxDrawdown,
		Fills:        []fillJSON{},
	}
	for _, t := range rep.Result.Trades {
		out.Fills = append(out.Fills, fillJSON{
			Index:  t.Index,
			Time:   t.Time,
			Side:   t.Side.String(),
			Price:  t.Price,
			Equity: t.Equity,
		})
	}
	return out
}
