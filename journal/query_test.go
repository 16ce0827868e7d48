package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func sampleRun(id string, created time.Time) BacktestRun {
	return BacktestRun{
		RunID:        id,
		Created:      created,
		Strategy:     "SMA(2/3)",
		Kind:         "sma_crossover",
		Params:       []byte(`{"fast":2,"slow":3}`),
		Dataset:      "btc_1h.csv",
		Timeframe:    "1h",
		Start:        t0,
		End:          t0.Add(7 * time.Hour),
		Bars:         8,
		FeeRate:      0.001,
		Trades:       3,
		RoundTrips:   1,
		Losses:       1,
		OpenPosition: true,
		FinalEquity:  0.997002999,
		TotalReturn:  -0.002997001,
		MaxDrawdown:  0.002997001,
	}
}

func sampleFills(id string) []TradeRecord {
	return []TradeRecord{
		{RunID: id, Seq: 1, Index: 1, Time: t0.Add(time.Hour), Side: "BUY", Price: 100, Equity: 0.999},
		{RunID: id, Seq: 2, Index: 4, Time: t0.Add(4 * time.Hour), Side: "SELL", Price: 100, Equity: 0.998001},
		{RunID: id, Seq: 3, Index: 6, Time: t0.Add(6 * time.Hour), Side: "BUY", Price: 100, Equity: 0.997002999},
	}
}

func TestGetBacktestRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	want := sampleRun("R1", t0.Add(24*time.Hour))
	require.NoError(t, j.RecordRun(want))

	got, err := j.GetBacktestRun(ctx, "R1")
	require.NoError(t, err)

	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.Created.Equal(got.Created))
	assert.Equal(t, want.Strategy, got.Strategy)
	assert.Equal(t, want.Kind, got.Kind)
	assert.JSONEq(t, string(want.Params), string(got.Params))
	assert.Equal(t, want.Dataset, got.Dataset)
	assert.Equal(t, want.Timeframe, got.Timeframe)
	assert.True(t, want.Start.Equal(got.Start))
	assert.True(t, want.End.Equal(got.End))
	assert.Equal(t, want.Bars, got.Bars)
	assert.InDelta(t, want.FeeRate, got.FeeRate, 1e-12)
	assert.Equal(t, want.Trades, got.Trades)
	assert.Equal(t, want.RoundTrips, got.RoundTrips)
	assert.Equal(t, want.Losses, got.Losses)
	assert.True(t, got.OpenPosition)
	assert.InDelta(t, want.FinalEquity, got.FinalEquity, 1e-12)
	assert.InDelta(t, want.MaxDrawdown, got.MaxDrawdown, 1e-12)

	// replace on rerecord
	want.Notes = nil
	want.FinalEquity = 1.5
	require.NoError(t, j.RecordRun(want))
	got, err = j.GetBacktestRun(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.FinalEquity)
}

func TestGetBacktestRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetBacktestRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	require.NoError(t, j.RecordRun(sampleRun("A", t0)))
	require.NoError(t, j.RecordRun(sampleRun("B", t0.Add(time.Hour))))
	require.NoError(t, j.RecordRun(sampleRun("C", t0.Add(2*time.Hour))))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "C", runs[0].RunID)
	assert.Equal(t, "A", runs[2].RunID)

	runs, err = j.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "B", runs[1].RunID)
}

func TestListTradesAndEquityByRunID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	for _, rec := range sampleFills("R1") {
		require.NoError(t, j.RecordTrade(rec))
	}
	require.NoError(t, j.RecordTrade(TradeRecord{RunID: "R2", Seq: 1, Time: t0, Side: "BUY", Price: 5, Equity: 1}))

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Index: 2 - i, Time: t0.Add(time.Duration(2-i) * time.Hour), Equity: 1 - float64(i)/100}))
	}

	trades, err := j.ListTradesByRunID(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.Equal(t, "SELL", trades[1].Side)
	assert.Equal(t, 4, trades[1].Index)
	assert.True(t, trades[1].Time.Equal(t0.Add(4*time.Hour)))
	assert.InDelta(t, 0.998001, trades[1].Equity, 1e-12)

	eq, err := j.ListEquityByRunID(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, eq, 3)
	for i, e := range eq {
		assert.Equal(t, i, e.Index)
	}

	none, err := j.ListTradesByRunID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordAllAndExportOrg(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	run := sampleRun("01HXYZABCDEF", t0)
	fills := sampleFills(run.RunID)
	equity := []EquitySnapshot{
		{RunID: run.RunID, Index: 0, Time: t0, Equity: 1},
		{RunID: run.RunID, Index: 1, Time: t0.Add(time.Hour), Equity: 0.999},
	}
	require.NoError(t, j.RecordAll(ctx, run, fills, equity))

	gotEq, err := j.ListEquityByRunID(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, gotEq, 2)

	org, err := j.ExportBacktestOrg(ctx, run.RunID)
	require.NoError(t, err)
	assert.Contains(t, org, "* BACKTEST: SMA(2/3) btc_1h.csv")
	assert.Contains(t, org, ":RUN_ID:      01HXYZABCDEF")
	assert.Contains(t, org, ":OPEN:        yes")
	assert.Contains(t, org, "*** SELL 100.0000 (01HXYZAB #2)")

	// a failing batch leaves nothing behind
	err = j.RecordAll(ctx, sampleRun("R9", t0), append(sampleFills("R9"), sampleFills("R9")[0]), nil)
	require.Error(t, err)
	_, err = j.GetBacktestRun(ctx, "R9")
	assert.Error(t, err)
	trades, err := j.ListTradesByRunID(ctx, "R9")
	require.NoError(t, err)
	assert.Empty(t, trades)
}
