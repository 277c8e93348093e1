package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	stock_name TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price_per_share REAL NOT NULL,
	total_value REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	stock_value REAL NOT NULL,
	capital REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
