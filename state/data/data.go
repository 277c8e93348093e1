// Package data holds the state tree stored in the boutique.Store.
//
// Everything in here is plain data: reducers in state/modifiers produce new
// copies of it, selectors in state/selectors read it, and the persistence
// layer serializes it wholesale. Nothing in this package mutates anything.
package data

import "time"

// Transaction types recorded in the ledger.
const (
	Buy  = "BUY"
	Sell = "SELL"
)

// FinancialSnapshot is one point in a value history window: a price (or
// capital) and a short display label such as "14:03".
type FinancialSnapshot struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// Stock is a single market listing. Name doubles as the symbol and is the
// registry key. Value is the current price and must stay positive; Quantity
// is the number of shares held and must stay non-negative.
type Stock struct {
	Name         string              `json:"name"`
	Value        float64             `json:"value"`
	Volatility   float64             `json:"volatility"`
	ValueChange  float64             `json:"valueChange"`
	Type         string              `json:"type"`
	ValueHistory []FinancialSnapshot `json:"valueHistory"`
	Quantity     int                 `json:"quantity"`
	Custom       bool                `json:"custom"`
}

// StockMarket is the registry of all listed stocks, builtin and custom.
type StockMarket struct {
	Stocks []Stock `json:"stocks"`
}

// Depot is the player's account. AccountValue is the cash balance.
// StockValueDevelopment is a sliding window of total portfolio value
// snapshots, appended once per tick for the analytics view.
type Depot struct {
	AccountValue          float64             `json:"accountValue"`
	StockValueDevelopment []FinancialSnapshot `json:"stockValueDevelopment"`
}

// Transaction is one immutable ledger entry. Entries are prepended so the
// most recent trade is always first; nothing ever edits or removes one.
type Transaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	StockName     string    `json:"stockName"`
	Quantity      int       `json:"quantity"`
	PricePerShare float64   `json:"pricePerShare"`
	TotalValue    float64   `json:"totalValue"`
	Timestamp     time.Time `json:"timestamp"`
}

// Transactions is the append-only trade ledger, newest first.
type Transactions struct {
	Entries []Transaction `json:"transactions"`
}

// Upgrade is a purchasable earnings booster. Level never exceeds MaxLevel,
// and Cost grows by 15% with each purchase.
type Upgrade struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Level       int     `json:"level"`
	MaxLevel    int     `json:"maxLevel"`
	Multiplier  float64 `json:"multiplier"`
}

// Upgrades holds the upgrade catalog with current levels and costs.
type Upgrades struct {
	Upgrades []Upgrade `json:"upgrades"`
}

// State is the single application state tree. The boutique.Store owns the
// only live copy; everyone else sees immutable snapshots of it.
type State struct {
	Depot        Depot        `json:"depot"`
	StockMarket  StockMarket  `json:"stockMarket"`
	Transactions Transactions `json:"transactions"`
	Upgrades     Upgrades     `json:"upgrades"`
}

// DefaultUpgrades returns the upgrade catalog at level zero. Costs here are
// the level-one purchase prices; they inflate as levels are bought.
func DefaultUpgrades() []Upgrade {
	return []Upgrade{
		{ID: "boost-1", Name: "Money Boost I", Description: "Increase earnings by 25%", Cost: 500, Level: 0, MaxLevel: 5, Multiplier: 1.25},
		{ID: "boost-2", Name: "Money Boost II", Description: "Increase earnings by 50%", Cost: 1500, Level: 0, MaxLevel: 5, Multiplier: 1.50},
		{ID: "boost-3", Name: "Premium Simulator", Description: "Increase earnings by 100%", Cost: 5000, Level: 0, MaxLevel: 3, Multiplier: 2.0},
		{ID: "lucky-charm", Name: "Lucky Charm", Description: "Increase max earning amount by 50%", Cost: 2000, Level: 0, MaxLevel: 5, Multiplier: 1.5},
		{ID: "goldmine", Name: "Goldmine Access", Description: "Double your earning potential", Cost: 10000, Level: 0, MaxLevel: 2, Multiplier: 2.5},
		{ID: "crypto-miner", Name: "Crypto Miner", Description: "Increase earnings by 75%", Cost: 3000, Level: 0, MaxLevel: 4, Multiplier: 1.75},
	}
}

// Initial returns the state tree for a brand new game: empty market (seeded
// by the engine on first load), empty ledger, full upgrade catalog, and the
// given starting cash balance.
func Initial(startingBalance float64) State {
	return State{
		Depot:        Depot{AccountValue: startingBalance},
		StockMarket:  StockMarket{Stocks: []Stock{}},
		Transactions: Transactions{Entries: []Transaction{}},
		Upgrades:     Upgrades{Upgrades: DefaultUpgrades()},
	}
}

// FindStock returns the index of the named stock in s, or -1.
func FindStock(stocks []Stock, name string) int {
	for i := range stocks {
		if stocks[i].Name == name {
			return i
		}
	}
	return -1
}

// FindUpgrade returns the index of the upgrade with the given id, or -1.
func FindUpgrade(upgrades []Upgrade, id string) int {
	for i := range upgrades {
		if upgrades[i].ID == id {
			return i
		}
	}
	return -1
}
