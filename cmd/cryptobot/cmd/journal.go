package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect backtests recorded in a SQLite journal",
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded backtest runs, newest first",
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded run as an Org-mode report",
	Long: `Render a recorded run and its fills as Org-mode.

Examples:
  cryptobot journal show 01J9Z3Q6W8F5V0M3K2T1S4R7PX --db runs.sqlite
  cryptobot journal show 01J9Z3Q6W8F5V0M3K2T1S4R7PX -o run.org`,
	Args: cobra.ExactArgs(1),
	RunE: runJournalShow,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the fills of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "Print the equity curve of a recorded run as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var (
	journalDB    string
	journalLimit int
	journalOut   string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVar(&journalDB, "db", "", "sqlite journal path (default journal.db_path from config)")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
	journalShowCmd.Flags().StringVarP(&journalOut, "output", "o", "", "write the report to this file instead of stdout")
}

func openJournalDB() (*journal.SQLite, error) {
	path := journalDB
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal database: pass --db or set journal.db_path")
	}
	if !fileExists(path) {
		return nil, fmt.Errorf("journal database %s does not exist", path)
	}
	return journal.NewSQLite(path)
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	db, err := openJournalDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), journalLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "run_id\tcreated\tstrategy\tdataset\tfills\tfinal_eq\treturn%\tmax_dd%")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.6f\t%.2f\t%.2f\n",
			r.RunID, r.Created.Format(time.RFC3339), r.Strategy, r.Dataset,
			r.Trades, r.FinalEquity, r.ReturnPct(), r.MaxDrawdown*100)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	db, err := openJournalDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if journalOut != "" {
		run, err := db.GetBacktestRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fills, err := db.ListTradesByRunID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		run.OrgPath = journalOut
		if err := run.WriteBacktestOrg(fills); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", journalOut)
		return nil
	}

	org, err := db.ExportBacktestOrg(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), org)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	db, err := openJournalDB()
	if err != nil {
		return err
	}
	defer db.Close()

	trades, err := db.ListTradesByRunID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(trades) == 0 {
		fmt.Fprintf(out, "no fills for run %s\n", args[0])
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "seq\tbar\ttime\tside\tprice\tequity")
	for _, t := range trades {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.6f\t%.6f\n",
			t.Seq, t.Index, t.Time.Format(time.RFC3339), t.Side, t.Price, t.Equity)
	}
	return tw.Flush()
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	db, err := openJournalDB()
	if err != nil {
		return err
	}
	defer db.Close()

	points, err := db.ListEquityByRunID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "index,time,equity")
	for _, p := range points {
		fmt.Fprintf(out, "%d,%s,%.8f\n", p.Index, p.Time.Format(time.RFC3339), p.Equity)
	}
	return nil
}
