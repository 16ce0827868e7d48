package journal

const Schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	kind TEXT NOT NULL,
	params TEXT NOT NULL DEFAULT '',
	dataset TEXT NOT NULL DEFAULT '',
	timeframe TEXT NOT NULL DEFAULT '',
	start_time DATETIME,
	end_time DATETIME,
	bars INTEGER NOT NULL,
	fee_rate REAL NOT NULL,
	slippage_rate REAL NOT NULL,
	trades INTEGER NOT NULL,
	round_trips INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	open_position INTEGER NOT NULL,
	final_equity REAL NOT NULL,
	total_return REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	org_path TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	bar_index INTEGER NOT NULL,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	equity REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	bar_index INTEGER NOT NULL,
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	PRIMARY KEY (run_id, bar_index)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON backtest_runs(created);
`
