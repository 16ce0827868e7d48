package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/strategies"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Print the signals a strategy produces for a price CSV",
	Long: `Compute indicators and signals without simulating trades.

By default only bars with a BUY or SELL signal are listed.

Examples:
  cryptobot signals -d data/sample.csv
  cryptobot signals -d btc.csv -s bollinger --bb-period 20 --bb-k 2 --all
  cryptobot signals -d btc.csv --last`,
	RunE: runSignals,
}

var (
	sigFlags runFlags
	sigAll   bool
	sigLast  bool
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	sigFlags.register(signalsCmd.Flags())
	signalsCmd.Flags().BoolVar(&sigAll, "all", false, "list every bar past the warm-up, not only crossings")
	signalsCmd.Flags().BoolVar(&sigLast, "last", false, "print only the latest signal")
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := sigFlags.apply(cmd, cfg); err != nil {
		return err
	}
	kind, err := cfg.Strategy.Kind()
	if err != nil {
		return err
	}
	strat, err := strategies.New(kind, cfg.Strategy.Params)
	if err != nil {
		return err
	}

	series, _, err := loadSeries(cfg)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	rows, err := strategies.Run(strat, series)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sigLast {
		last, ok := rows.Last()
		if !ok {
			fmt.Fprintf(out, "%s: no bars past the warm-up window\n", strat.Name())
			return nil
		}
		fmt.Fprintf(out, "%s %s %s close=%.6f\n", strat.Name(), last.Time.Format(time.RFC3339), last.Signal, last.Close)
		return nil
	}

	if !sigAll {
		rows = rows.Crossings()
	}
	buys, sells := rows.Counts()
	fmt.Fprintf(out, "%s: %d rows, %d buy, %d sell\n", strat.Name(), len(rows), buys, sells)
	printSignals(out, kind, rows)
	return nil
}

func printSignals(w io.Writer, kind strategies.Kind, rows strategies.SignalSeries) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	switch kind {
	case strategies.KindRSI:
		fmt.Fprintln(tw, "time\tclose\trsi\tsignal")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%.6f\t%.2f\t%s\n", r.Time.Format(time.RFC3339), r.Close, r.Indicators.RSI, r.Signal)
		}
	case strategies.KindBollinger:
		fmt.Fprintln(tw, "time\tclose\tlower\tmiddle\tupper\tsignal")
		for _, r := range rows {
			ind := r.Indicators
			fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\t%.6f\t%s\n", r.Time.Format(time.RFC3339), r.Close, ind.Lower, ind.Middle, ind.Upper, r.Signal)
		}
	default:
		fmt.Fprintln(tw, "time\tclose\tfast_ma\tslow_ma\tsignal")
		for _, r := range rows {
			ind := r.Indicators
			fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\t%s\n", r.Time.Format(time.RFC3339), r.Close, ind.FastMA, ind.SlowMA, r.Signal)
		}
	}
}
