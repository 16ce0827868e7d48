package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/pkg/errs"
	"github.com/rustyeddy/cryptobot/strategies"
)

// runFlags are shared by the commands that load data and pick a strategy.
type runFlags struct {
	data     string
	from     string
	to       string
	strategy string

	fast, slow int

	rsiPeriod  int
	oversold   float64
	overbought float64

	bbPeriod int
	bbK      float64

	fee      float64
	slippage float64

	journalType string
	dbPath      string
	tradesFile  string
	equityFile  string
	orgPath     string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	d := config.Default()

	fs.StringVarP(&f.data, "data", "d", "", "price CSV (ts,o,h,l,c,v or time,open,high,low,close,volume)")
	fs.StringVar(&f.from, "from", "", "first bar time to include (inclusive)")
	fs.StringVar(&f.to, "to", "", "bar time to stop at (exclusive)")
	fs.StringVarP(&f.strategy, "strategy", "s", d.Strategy.Name, "strategy: "+kindNames())

	fs.IntVar(&f.fast, "fast", d.Strategy.SMA.Fast, "sma_crossover: fast period")
	fs.IntVar(&f.slow, "slow", d.Strategy.SMA.Slow, "sma_crossover: slow period")
	fs.IntVar(&f.rsiPeriod, "rsi-period", d.Strategy.RSI.Period, "rsi: period")
	fs.Float64Var(&f.oversold, "oversold", d.Strategy.RSI.Oversold, "rsi: buy below this level")
	fs.Float64Var(&f.overbought, "overbought", d.Strategy.RSI.Overbought, "rsi: sell above this level")
	fs.IntVar(&f.bbPeriod, "bb-period", d.Strategy.Bollinger.Period, "bollinger: period")
	fs.Float64Var(&f.bbK, "bb-k", d.Strategy.Bollinger.StdDevs, "bollinger: standard deviations")

	fs.Float64Var(&f.fee, "fee", d.Costs.FeeRate, "fee rate per fill (0.0004 = 4 bps)")
	fs.Float64Var(&f.slippage, "slippage", d.Costs.SlippageRate, "slippage rate per fill")
}

func (f *runFlags) registerJournal(fs *pflag.FlagSet) {
	fs.StringVar(&f.journalType, "journal", "", "journal: none, csv or sqlite (overrides config)")
	fs.StringVar(&f.dbPath, "db", "", "sqlite journal path")
	fs.StringVar(&f.tradesFile, "trades-file", "", "csv journal trades path")
	fs.StringVar(&f.equityFile, "equity-file", "", "csv journal equity path")
	fs.StringVar(&f.orgPath, "org", "", "write an Org-mode report of the run here")
}

// apply copies the flags the user set onto cfg and validates it.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}

	set("data", func() { cfg.Data.Path = f.data })
	set("from", func() { cfg.Data.From = f.from })
	set("to", func() { cfg.Data.To = f.to })
	set("strategy", func() { cfg.Strategy.Name = f.strategy })
	set("fast", func() { cfg.Strategy.SMA.Fast = f.fast })
	set("slow", func() { cfg.Strategy.SMA.Slow = f.slow })
	set("rsi-period", func() { cfg.Strategy.RSI.Period = f.rsiPeriod })
	set("oversold", func() { cfg.Strategy.RSI.Oversold = f.oversold })
	set("overbought", func() { cfg.Strategy.RSI.Overbought = f.overbought })
	set("bb-period", func() { cfg.Strategy.Bollinger.Period = f.bbPeriod })
	set("bb-k", func() { cfg.Strategy.Bollinger.StdDevs = f.bbK })
	set("fee", func() { cfg.Costs.FeeRate = f.fee })
	set("slippage", func() { cfg.Costs.SlippageRate = f.slippage })

	if fs.Lookup("journal") != nil {
		set("journal", func() { cfg.Journal.Type = journal.Kind(f.journalType) })
		set("db", func() { cfg.Journal.DBPath = f.dbPath })
		set("trades-file", func() { cfg.Journal.TradesFile = f.tradesFile })
		set("equity-file", func() { cfg.Journal.EquityFile = f.equityFile })
		set("org", func() { cfg.Journal.OrgPath = f.orgPath })
	}

	if cfg.Data.Path == "" {
		return errs.Configf("data.path", "is required (--data or data.path in config)")
	}
	return cfg.Validate()
}

func kindNames() string {
	var names []string
	for _, k := range strategies.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// parseInts accepts "5,10,20" or a range "5:20:5" (from:to:step).
func parseInts(field, s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errs.Configf(field, "is empty")
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, errs.Configf(field, "range must be from:to:step, got %q", s)
		}
		var n [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, errs.Configf(field, "bad integer %q", p)
			}
			n[i] = v
		}
		out := strategies.Range(n[0], n[1], n[2])
		if len(out) == 0 {
			return nil, errs.Configf(field, "range %q is empty", s)
		}
		return out, nil
	}

	var out []int
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errs.Configf(field, "bad integer %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseFloats accepts "1.5,2,2.5".
func parseFloats(field, s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errs.Configf(field, "bad number %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errs.Configf(field, "is empty")
	}
	return out, nil
}
