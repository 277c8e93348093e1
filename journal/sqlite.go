package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals into a sqlite database at a path.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, type, stock_name, quantity, price_per_share, total_value, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Type, t.StockName, t.Quantity, t.PricePerShare, t.TotalValue, t.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, balance, stock_value, capital)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Balance, e.StockValue, e.Capital,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
