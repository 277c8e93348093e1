// Package journal records executed trades and per-tick equity snapshots in
// durable form, outside the state tree. The in-state ledger is the source of
// truth for the game; the journal exists for offline analysis of a long
// session and survives state resets.
package journal

import "time"

// TradeRecord is one executed buy or sell.
type TradeRecord struct {
	TradeID       string
	Type          string
	StockName     string
	Quantity      int
	PricePerShare float64
	TotalValue    float64
	Time          time.Time
}

// EquitySnapshot captures the account at one tick.
type EquitySnapshot struct {
	Time       time.Time
	Balance    float64
	StockValue float64
	Capital    float64
}

// Journal is a sink for trade and equity records.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
