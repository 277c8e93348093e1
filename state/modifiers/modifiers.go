// Package modifiers holds the boutique.Modifiers for the state store: the
// reducers that turn (state, action) into the next state. Modifiers never
// mutate the incoming state; slices are copied before they change.
package modifiers

import (
	"math"

	"github.com/golang/glog"
	"github.com/johnsiilver/boutique"

	"stockmarket/state/actions"
	"stockmarket/state/data"
)

// All is the combined Modifiers the store is constructed with.
var All = boutique.NewModifiers(StockMarket, Depot, Transactions, Upgrades, Replace)

// StockMarket handles all registry actions: seeding, custom add, delete,
// batch update, and quantity changes.
func StockMarket(state interface{}, action boutique.Action) interface{} {
	s := state.(data.State)

	switch action.Type {
	case actions.ActSetStocks:
		s.StockMarket.Stocks = action.Update.([]data.Stock)

	case actions.ActAddCustomStock:
		add := action.Update.(actions.CustomStock)
		if data.FindStock(s.StockMarket.Stocks, add.Stock.Name) != -1 {
			break
		}
		stocks := make([]data.Stock, len(s.StockMarket.Stocks), len(s.StockMarket.Stocks)+1)
		copy(stocks, s.StockMarket.Stocks)
		s.StockMarket.Stocks = append(stocks, add.Stock)

	case actions.ActDeleteStock:
		name := action.Update.(string)
		i := data.FindStock(s.StockMarket.Stocks, name)
		if i == -1 {
			break
		}
		stocks := make([]data.Stock, 0, len(s.StockMarket.Stocks)-1)
		stocks = append(stocks, s.StockMarket.Stocks[:i]...)
		stocks = append(stocks, s.StockMarket.Stocks[i+1:]...)
		s.StockMarket.Stocks = stocks

	case actions.ActUpdateStocks:
		updates := action.Update.([]actions.StockUpdate)
		stocks := make([]data.Stock, len(s.StockMarket.Stocks))
		copy(stocks, s.StockMarket.Stocks)
		for _, u := range updates {
			i := data.FindStock(stocks, u.StockName)
			if i == -1 {
				// A bad name must not sink the rest of the batch.
				glog.Errorf("update for unknown stock %q dropped", u.StockName)
				continue
			}
			stocks[i] = u.Stock
		}
		s.StockMarket.Stocks = stocks

	case actions.ActChangeQuantity:
		change := action.Update.(actions.QuantityChange)
		i := data.FindStock(s.StockMarket.Stocks, change.Name)
		if i == -1 {
			glog.Errorf("quantity change for unknown stock %q dropped", change.Name)
			break
		}
		stocks := make([]data.Stock, len(s.StockMarket.Stocks))
		copy(stocks, s.StockMarket.Stocks)
		stocks[i].Quantity += change.Amount
		s.StockMarket.Stocks = stocks
	}
	return s
}

// Depot handles cash balance changes and the analytics window. Any delta
// that would produce NaN or an infinity clamps the balance to 0 instead of
// poisoning the whole tree.
func Depot(state interface{}, action boutique.Action) interface{} {
	s := state.(data.State)

	switch action.Type {
	case actions.ActChangeAccountValue:
		delta := action.Update.(float64)
		next := s.Depot.AccountValue + delta
		if math.IsNaN(next) || math.IsInf(next, 0) {
			glog.Errorf("account balance arithmetic produced %v, clamping to 0", next)
			next = 0
		}
		s.Depot.AccountValue = next

	case actions.ActPushDevelopment:
		dev := action.Update.(actions.Development)
		window := make([]data.FinancialSnapshot, 0, len(s.Depot.StockValueDevelopment)+1)
		window = append(window, s.Depot.StockValueDevelopment...)
		window = append(window, dev.Snapshot)
		if dev.MaxPoints > 0 && len(window) > dev.MaxPoints {
			window = window[len(window)-dev.MaxPoints:]
		}
		s.Depot.StockValueDevelopment = window
	}
	return s
}

// Transactions prepends ledger entries so the newest trade is first. The
// ledger is append-only; no action removes or edits an entry.
func Transactions(state interface{}, action boutique.Action) interface{} {
	s := state.(data.State)

	switch action.Type {
	case actions.ActAddTransaction:
		tx := action.Update.(data.Transaction)
		entries := make([]data.Transaction, 0, len(s.Transactions.Entries)+1)
		entries = append(entries, tx)
		entries = append(entries, s.Transactions.Entries...)
		s.Transactions.Entries = entries
	}
	return s
}

// Upgrades levels up a purchased upgrade and inflates its next cost by 15%.
// The funds check happened in the engine; this reducer only refuses the
// structurally impossible (unknown id, already maxed).
func Upgrades(state interface{}, action boutique.Action) interface{} {
	s := state.(data.State)

	switch action.Type {
	case actions.ActBuyUpgrade:
		id := action.Update.(string)
		i := data.FindUpgrade(s.Upgrades.Upgrades, id)
		if i == -1 || s.Upgrades.Upgrades[i].Level >= s.Upgrades.Upgrades[i].MaxLevel {
			break
		}
		upgrades := make([]data.Upgrade, len(s.Upgrades.Upgrades))
		copy(upgrades, s.Upgrades.Upgrades)
		upgrades[i].Level++
		upgrades[i].Cost = math.Floor(upgrades[i].Cost * 1.15)
		s.Upgrades.Upgrades = upgrades
	}
	return s
}

// Replace swaps in an entire imported state tree.
func Replace(state interface{}, action boutique.Action) interface{} {
	if action.Type != actions.ActReplaceState {
		return state
	}
	return action.Update.(data.State)
}
