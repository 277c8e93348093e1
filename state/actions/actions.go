// Package actions defines the boutique.Actions that the modifiers use to
// change the state tree. These are the only ways the tree can change.
package actions

import (
	"github.com/johnsiilver/boutique"

	"stockmarket/state/data"
)

const (
	// ActSetStocks replaces the whole stock registry (seed or rehydrate).
	ActSetStocks = iota
	// ActAddCustomStock adds a user-created stock to the registry.
	ActAddCustomStock
	// ActDeleteStock removes a stock from the registry.
	ActDeleteStock
	// ActUpdateStocks merges a batch of per-stock updates into the registry.
	ActUpdateStocks
	// ActChangeQuantity adds a (possibly negative) delta to a holding.
	ActChangeQuantity
	// ActChangeAccountValue adds a (possibly negative) delta to the balance.
	ActChangeAccountValue
	// ActPushDevelopment appends a capital snapshot to the analytics window.
	ActPushDevelopment
	// ActAddTransaction prepends an entry to the trade ledger.
	ActAddTransaction
	// ActBuyUpgrade levels up an upgrade and inflates its cost.
	ActBuyUpgrade
	// ActReplaceState swaps in an entire imported state tree.
	ActReplaceState
)

// StockUpdate carries the post-tick fields for one stock.
type StockUpdate struct {
	StockName string
	Stock     data.Stock
}

// CustomStock carries the already-normalized fields for a new custom stock.
type CustomStock struct {
	Stock data.Stock
}

// QuantityChange adds Amount shares (negative to remove) to the named stock.
type QuantityChange struct {
	Name   string
	Amount int
}

// Development is one capital snapshot plus the window size to keep.
type Development struct {
	Snapshot  data.FinancialSnapshot
	MaxPoints int
}

// SetStocks replaces the registry contents.
func SetStocks(stocks []data.Stock) boutique.Action {
	return boutique.Action{Type: ActSetStocks, Update: stocks}
}

// AddCustomStock adds a fully-built custom stock. Validation and price
// normalization happen in the engine before this action is created.
func AddCustomStock(s data.Stock) boutique.Action {
	return boutique.Action{Type: ActAddCustomStock, Update: CustomStock{Stock: s}}
}

// DeleteStock removes the named stock. Refunds are the engine's business and
// happen via ChangeAccountValue before this action is performed.
func DeleteStock(name string) boutique.Action {
	return boutique.Action{Type: ActDeleteStock, Update: name}
}

// UpdateStocks merges a batch of tick results into the registry.
func UpdateStocks(updates []StockUpdate) boutique.Action {
	return boutique.Action{Type: ActUpdateStocks, Update: updates}
}

// ChangeQuantity adjusts the holding of the named stock by amount.
func ChangeQuantity(name string, amount int) boutique.Action {
	return boutique.Action{Type: ActChangeQuantity, Update: QuantityChange{Name: name, Amount: amount}}
}

// ChangeAccountValue adjusts the cash balance by delta.
func ChangeAccountValue(delta float64) boutique.Action {
	return boutique.Action{Type: ActChangeAccountValue, Update: delta}
}

// PushDevelopment appends one capital snapshot, evicting the oldest entry
// once the window holds maxPoints.
func PushDevelopment(snapshot data.FinancialSnapshot, maxPoints int) boutique.Action {
	return boutique.Action{Type: ActPushDevelopment, Update: Development{Snapshot: snapshot, MaxPoints: maxPoints}}
}

// AddTransaction prepends a ledger entry.
func AddTransaction(tx data.Transaction) boutique.Action {
	return boutique.Action{Type: ActAddTransaction, Update: tx}
}

// BuyUpgrade increments the level of the upgrade with the given id.
func BuyUpgrade(id string) boutique.Action {
	return boutique.Action{Type: ActBuyUpgrade, Update: id}
}

// ReplaceState swaps the whole tree, used by backup import.
func ReplaceState(s data.State) boutique.Action {
	return boutique.Action{Type: ActReplaceState, Update: s}
}
