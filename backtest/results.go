package backtest

import (
	"fmt"
	"io"
	"time"
)

// PrintResult writes a human-readable summary of a hosted run.
func PrintResult(w io.Writer, r Report) {
	s := r.Summary

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}
	if r.Timeframe != "" {
		fmt.Fprintf(w, "Timeframe:     %s\n", r.Timeframe)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	if s.Bars > 0 {
		fmt.Fprintf(w, "Start:         %s\n", s.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", s.End.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Bars:          %d\n", s.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Costs")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Fee Rate:      %.4f%%\n", r.Costs.FeeRate*100)
	fmt.Fprintf(w, "Slippage:      %.4f%%\n", r.Costs.SlippageRate*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Fills:         %d\n", s.Trades)
	fmt.Fprintf(w, "Round Trips:   %d\n", s.RoundTrips)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate()*100)
	if s.Open {
		fmt.Fprintln(w, "Position:      LONG (open at end)")
	} else {
		fmt.Fprintln(w, "Position:      FLAT")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Final Equity:  %.6f\n", s.FinalEquity)
	fmt.Fprintf(w, "Return:        %.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDrawdown*100)

	if r.OrgPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Result.Trades) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fills")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, t := range r.Result.Trades {
			fmt.Fprintf(w, "- %s\n", t)
		}
	}

	fmt.Fprintln(w)
}

// PrintSweep writes one line per sweep result, best first.
func PrintSweep(w io.Writer, results []SweepResult) {
	fmt.Fprintf(w, "%-4s %-22s %12s %9s %8s %6s %6s\n", "#", "strategy", "final_eq", "return%", "max_dd%", "trips", "wins")
	for i, r := range results {
		s := r.Report.Summary
		fmt.Fprintf(w, "%-4d %-22s %12.6f %9.2f %8.2f %6d %6d\n",
			i+1, r.Report.Strategy, s.FinalEquity, s.TotalReturn*100, s.MaxDrawdown*100, s.RoundTrips, s.Wins)
	}
}
