package journal

import (
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
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestSQLiteRecordTrade(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:       "01HTESTULID",
		Type:          "SELL",
		StockName:     "ACME",
		Quantity:      3,
		PricePerShare: 11,
		TotalValue:    33,
		Time:          when,
	}))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var (
		tradeID, tradeType, stockName string
		quantity                      int
		pricePerShare, totalValue     float64
	)
	err = db.QueryRow(`SELECT trade_id, type, stock_name, quantity, price_per_share, total_value FROM trades`).
		Scan(&tradeID, &tradeType, &stockName, &quantity, &pricePerShare, &totalValue)
	require.NoError(t, err)
	assert.Equal(t, "01HTESTULID", tradeID)
	assert.Equal(t, "SELL", tradeType)
	assert.Equal(t, "ACME", stockName)
	assert.Equal(t, 3, quantity)
	assert.Equal(t, 11.0, pricePerShare)
	assert.Equal(t, 33.0, totalValue)
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			Time:       time.Date(2024, 3, 1, 12, i, 0, 0, time.UTC),
			Balance:    1000,
			StockValue: float64(i * 10),
			Capital:    1000 + float64(i*10),
		}))
	}

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM equity`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestSQLiteSchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	// Reopening the same database must not fail on existing tables.
	j, err = NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())
}
