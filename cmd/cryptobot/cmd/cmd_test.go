package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/pkg/errs"
)

var closes = []float64{100, 102, 104, 103, 101, 99, 101, 105, 110, 108}

// writeBars writes closes as an hourly ts,o,h,l,c,v file.
func writeBars(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ts,o,h,l,c,v\n")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,10\n", t0.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), c, c, c, c)
	}
	path := filepath.Join(dir, "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

// resetFlags puts every flag back to its default so commands can run more
// than once in a test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cryptobot version "+Version+"\n", out)
}

func TestBacktest(t *testing.T) {
	data := writeBars(t, t.TempDir())

	out, err := execute(t, "backtest", "-d", data, "--fast", "2", "--slow", "3", "--fee", "0", "--slippage", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy:      SMA(2/3)")
	assert.Contains(t, out, "Dataset:       bars.csv")
	assert.Contains(t, out, "Fills:         1")
	assert.Contains(t, out, "LONG (open at end)")
	assert.Contains(t, out, "BUY @ 105.000000 (bar 4)")
}

func TestBacktestJSON(t *testing.T) {
	data := writeBars(t, t.TempDir())

	out, err := execute(t, "backtest", "-d", data, "--fast", "2", "--slow", "3", "--fee", "0", "--slippage", "0", "--json")
	require.NoError(t, err)

	var got backtestJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SMA(2/3)", got.Strategy)
	assert.Equal(t, 7, got.Bars)
	assert.Equal(t, 1, got.Trades)
	assert.True(t, got.OpenPosition)
	assert.InDelta(t, 108.0/105.0, got.FinalEquity, 1e-12)
	require.Len(t, got.Fills, 1)
	assert.Equal(t, "BUY", got.Fills[0].Side)
	assert.Len(t, got.RunID, 26)
}

func TestBacktestErrors(t *testing.T) {
	data := writeBars(t, t.TempDir())

	t.Run("missing data", func(t *testing.T) {
		_, err := execute(t, "backtest")
		var ce *errs.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "data.path", ce.Field)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := execute(t, "backtest", "-d", data, "-s", "macd")
		assert.True(t, errs.IsConfig(err), "%v", err)
	})

	t.Run("fast not below slow", func(t *testing.T) {
		_, err := execute(t, "backtest", "-d", data, "--fast", "5", "--slow", "5")
		var ce *errs.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "sma.fast", ce.Field)
	})

	t.Run("too few bars", func(t *testing.T) {
		_, err := execute(t, "backtest", "-d", data, "--fast", "5", "--slow", "20")
		assert.True(t, errs.IsData(err), "%v", err)
	})

	t.Run("empty window", func(t *testing.T) {
		_, err := execute(t, "backtest", "-d", data, "--from", "2030-01-01")
		assert.ErrorContains(t, err, "no bars")
	})
}

func TestSignals(t *testing.T) {
	data := writeBars(t, t.TempDir())

	out, err := execute(t, "signals", "-d", data, "--fast", "2", "--slow", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "SMA(2/3): 2 rows, 1 buy, 1 sell")
	assert.Contains(t, out, "2024-01-01T04:00:00Z")
	assert.Contains(t, out, "2024-01-01T07:00:00Z")

	out, err = execute(t, "signals", "-d", data, "--fast", "2", "--slow", "3", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "SMA(2/3): 7 rows, 1 buy, 1 sell")

	out, err = execute(t, "signals", "-d", data, "--fast", "2", "--slow", "3", "--last")
	require.NoError(t, err)
	assert.Equal(t, "SMA(2/3) 2024-01-01T09:00:00Z HOLD close=108.000000\n", out)
}

func TestSignalsRSI(t *testing.T) {
	data := writeBars(t, t.TempDir())

	out, err := execute(t, "signals", "-d", data, "-s", "rsi", "--rsi-period", "3", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "RSI(")
	assert.Contains(t, out, "rsi")
	assert.Contains(t, out, "7 rows")
}

func TestSweep(t *testing.T) {
	data := writeBars(t, t.TempDir())

	out, err := execute(t, "sweep", "-d", data, "--fasts", "1:2:1", "--slows", "3,4", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "sma_crossover sweep over bars.csv: 4 runs")
	for _, name := range []string{"SMA(1/3)", "SMA(1/4)", "SMA(2/3)", "SMA(2/4)"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "sweep", "-d", data, "--fasts", "1:2:1", "--slows", "3,4", "--top", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "SMA("))

	_, err = execute(t, "sweep", "-d", data, "--fasts", "5:1:1")
	assert.True(t, errs.IsConfig(err), "%v", err)
}

func TestBacktestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	data := writeBars(t, dir)
	db := filepath.Join(dir, "runs.sqlite")

	out, err := execute(t, "backtest", "-d", data, "--fast", "2", "--slow", "3",
		"--journal", "sqlite", "--db", db, "--json")
	require.NoError(t, err)
	var rep backtestJSON
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	out, err = execute(t, "journal", "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, rep.RunID)
	assert.Contains(t, out, "SMA(2/3)")

	out, err = execute(t, "journal", "trades", rep.RunID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "BUY")

	out, err = execute(t, "journal", "equity", rep.RunID, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, 1+7, strings.Count(out, "\n"))

	out, err = execute(t, "journal", "show", rep.RunID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "* BACKTEST: SMA(2/3)")

	org := filepath.Join(dir, "run.org")
	_, err = execute(t, "journal", "show", rep.RunID, "--db", db, "-o", org)
	require.NoError(t, err)
	assert.FileExists(t, org)

	_, err = execute(t, "journal", "show", "nope", "--db", db)
	assert.ErrorContains(t, err, "not found")

	_, err = execute(t, "journal", "runs", "--db", filepath.Join(dir, "absent.sqlite"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestConfigInitValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = execute(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (strategy sma_crossover, journal none)")

	cfg := config.Default()
	cfg.Costs.FeeRate = 2
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, cfg.SaveToFile(bad))
	_, err = execute(t, "config", "validate", bad)
	assert.True(t, errs.IsConfig(err), "%v", err)
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	data := writeBars(t, dir)

	cfg := config.Default()
	cfg.Data.Path = data
	cfg.Strategy.SMA.Fast = 1
	cfg.Strategy.SMA.Slow = 3
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	out, err := execute(t, "signals", "-c", path, "--last")
	require.NoError(t, err)
	assert.Contains(t, out, "SMA(1/3)")

	// flags win over the file
	out, err = execute(t, "signals", "-c", path, "--fast", "2", "--last")
	require.NoError(t, err)
	assert.Contains(t, out, "SMA(2/3)")

	out, err = execute(t, "config", "show", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fast: 1")
}

func TestParseInts(t *testing.T) {
	tests := []struct {
		in   string
		want []int
		ok   bool
	}{
		{"5,10,20", []int{5, 10, 20}, true},
		{" 5 , 10 ", []int{5, 10}, true},
		{"5:20:5", []int{5, 10, 15, 20}, true},
		{"7", []int{7}, true},
		{"", nil, false},
		{"5:20", nil, false},
		{"20:5:5", nil, false},
		{"a,b", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInts("fasts", tt.in)
			if !tt.ok {
				assert.True(t, errs.IsConfig(err), "%v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	fs, err := parseFloats("bb-ks", "1.5, 2,2.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 2.5}, fs)
	_, err = parseFloats("bb-ks", "x")
	assert.Error(t, err)
}
