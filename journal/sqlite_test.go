package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('backtest_runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["backtest_runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(TradeRecord{RunID: "R", Seq: 1, Time: time.Now(), Side: "BUY", Price: 1, Equity: 1}))
	require.NoError(t, j.Close())

	// schema creation is idempotent and data survives
	j2, err := NewSQLite(path)
	require.NoError(t, err)
	defer j2.Close()

	trades, err := j2.ListTradesByRunID(context.Background(), "R")
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestSQLiteDuplicateTradeSeq(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	rec := TradeRecord{RunID: "R", Seq: 1, Time: time.Now(), Side: "BUY", Price: 1, Equity: 1}
	require.NoError(t, j.RecordTrade(rec))
	err := j.RecordTrade(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert trade")
}
