// Package selectors holds pure read projections over the state tree.
// Nothing in here mutates state or caches derived values; everything is
// recomputed from the tree on each call so it can never drift from it.
package selectors

import (
	"math"

	"stockmarket/state/data"
)

// AccountValue returns the cash balance.
func AccountValue(s data.State) float64 {
	return s.Depot.AccountValue
}

// StockValue returns the total market value of all held shares. Entries
// whose product is not a finite number contribute nothing.
func StockValue(s data.State) float64 {
	total := 0.0
	for _, stock := range s.StockMarket.Stocks {
		v := stock.Value * float64(stock.Quantity)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

// Capital is cash plus holdings.
func Capital(s data.State) float64 {
	total := AccountValue(s) + StockValue(s)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

// PossessedStocks returns the stocks with at least one share held.
func PossessedStocks(s data.State) []data.Stock {
	owned := []data.Stock{}
	for _, stock := range s.StockMarket.Stocks {
		if stock.Quantity > 0 {
			owned = append(owned, stock)
		}
	}
	return owned
}

// CategoryValue is the share of the portfolio (by quantity) in one sector.
type CategoryValue struct {
	CategoryName string  `json:"categoryName"`
	Ratio        float64 `json:"ratio"`
}

// CategoryValues breaks held quantity down by stock sector as percentages.
// Sectors with nothing held are dropped.
func CategoryValues(s data.State) []CategoryValue {
	categories := []CategoryValue{}
	total := 0
	for _, stock := range s.StockMarket.Stocks {
		i := -1
		for j := range categories {
			if categories[j].CategoryName == stock.Type {
				i = j
				break
			}
		}
		if i == -1 {
			categories = append(categories, CategoryValue{CategoryName: stock.Type, Ratio: float64(stock.Quantity)})
		} else {
			categories[i].Ratio += float64(stock.Quantity)
		}
		total += stock.Quantity
	}

	kept := []CategoryValue{}
	for _, c := range categories {
		if c.Ratio > 0 {
			c.Ratio = c.Ratio * 100 / float64(total)
			kept = append(kept, c)
		}
	}
	return kept
}

// EarningsMultiplier is the product of multiplier^level over every upgrade
// with at least one level, starting from 1.
func EarningsMultiplier(s data.State) float64 {
	multiplier := 1.0
	for _, u := range s.Upgrades.Upgrades {
		if u.Level > 0 {
			multiplier *= math.Pow(u.Multiplier, float64(u.Level))
		}
	}
	return multiplier
}

// Development returns the capital-over-time analytics window.
func Development(s data.State) []data.FinancialSnapshot {
	return s.Depot.StockValueDevelopment
}
