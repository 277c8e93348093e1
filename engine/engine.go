// Package engine runs the game: it validates player actions against the
// current state tree, commits them through the store, and drives the
// periodic price simulation.
//
// Every operation follows the same shape: take the engine lock, read a
// consistent snapshot, validate, then commit by performing store actions.
// The lock is what makes validate-then-commit atomic; nothing else may
// touch the store between a check and its commit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"reflect"
	"sync"
	"time"

	"github.com/johnsiilver/boutique"

	"stockmarket/internal/id"
	"stockmarket/journal"
	"stockmarket/market"
	"stockmarket/notify"
	"stockmarket/persist"
	"stockmarket/quotes"
	"stockmarket/state"
	"stockmarket/state/actions"
	"stockmarket/state/data"
	"stockmarket/state/selectors"
)

// Domain failures. These reach the player as notifications, not as crashes;
// the error values exist so callers (API, CLI, tests) can tell them apart.
var (
	ErrStockNotFound        = errors.New("stock not found")
	ErrUpgradeNotFound      = errors.New("upgrade not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrMaxLevelReached      = errors.New("upgrade already at maximum level")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Config carries the engine's collaborators and tuning. Zero-value fields
// get safe defaults.
type Config struct {
	// HistoryPoints is each stock's price history window length.
	HistoryPoints int
	// TickInterval spaces the history labels and the scheduler.
	TickInterval time.Duration

	Notifier notify.Notifier
	Journal  journal.Journal
	// Quotes, when set and enabled, feeds live prices into the simulation.
	Quotes *quotes.Client
	Log    *slog.Logger

	// Rand and Now exist so tests can pin randomness and time.
	Rand *rand.Rand
	Now  func() time.Time

	// Defaults is the tree used when an import is missing keys.
	Defaults data.State
}

// Engine owns all game operations against one store.
type Engine struct {
	mu    sync.Mutex
	store *boutique.Store

	points   int
	interval time.Duration

	notifier notify.Notifier
	journal  journal.Journal
	quotes   *quotes.Client
	log      *slog.Logger
	rng      *rand.Rand
	now      func() time.Time
	defaults data.State

	liveMu     sync.Mutex
	livePrices map[string]float64
	fetching   bool
}

// New builds an Engine around a store.
func New(store *boutique.Store, cfg Config) *Engine {
	e := &Engine{
		store:      store,
		points:     cfg.HistoryPoints,
		interval:   cfg.TickInterval,
		notifier:   cfg.Notifier,
		journal:    cfg.Journal,
		quotes:     cfg.Quotes,
		log:        cfg.Log,
		rng:        cfg.Rand,
		now:        cfg.Now,
		defaults:   cfg.Defaults,
		livePrices: map[string]float64{},
	}
	if e.points <= 0 {
		e.points = 10
	}
	if e.interval <= 0 {
		e.interval = 30 * time.Second
	}
	if e.notifier == nil {
		e.notifier = notify.Logger{}
	}
	if e.journal == nil {
		e.journal = journal.Nop{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Snapshot returns the current state tree.
func (e *Engine) Snapshot() data.State {
	return state.Current(e.store)
}

// LoadStocks seeds or rehydrates the market. A persisted market keeps its
// holdings; a fresh one comes from the builtin dataset. Either way, each
// stock gets a freshly backfilled history window so its chart starts full.
func (e *Engine) LoadStocks() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := state.Current(e.store)
	stocks := s.StockMarket.Stocks
	if len(stocks) == 0 {
		stocks = market.Seed()
	}

	now := e.now()
	out := make([]data.Stock, len(stocks))
	for i, stock := range stocks {
		market.BackfillHistory(e.rng, &stock, e.points, e.interval, now)
		out[i] = stock
	}
	e.perform(actions.SetStocks(out))
	e.log.Info("market loaded", "stocks", len(out))
}

// BuyOrSell executes a trade: positive amount buys, negative sells. The
// whole validate-then-commit sequence observes one snapshot of price,
// balance and holdings.
func (e *Engine) BuyOrSell(stockName string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount == 0 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Enter a valid amount"})
		return ErrInvalidAmount
	}

	s := state.Current(e.store)
	i := data.FindStock(s.StockMarket.Stocks, stockName)
	if i == -1 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Stock with name " + stockName + " could not be found"})
		return ErrStockNotFound
	}
	stock := s.StockMarket.Stocks[i]

	totalCost := stock.Value * float64(amount)
	if amount > 0 && s.Depot.AccountValue < totalCost {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Not enough money"})
		return ErrInsufficientFunds
	}
	if stock.Quantity+amount < 0 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Can't sell stock you don't own"})
		return ErrInsufficientHoldings
	}

	e.perform(actions.ChangeQuantity(stockName, amount))
	e.perform(actions.ChangeAccountValue(-totalCost))

	txType := data.Buy
	if amount < 0 {
		txType = data.Sell
	}
	quantity := amount
	if quantity < 0 {
		quantity = -quantity
	}
	tx := data.Transaction{
		ID:            id.New(),
		Type:          txType,
		StockName:     stockName,
		Quantity:      quantity,
		PricePerShare: stock.Value,
		TotalValue:    float64(quantity) * stock.Value,
		Timestamp:     e.now(),
	}
	e.perform(actions.AddTransaction(tx))

	if err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:       tx.ID,
		Type:          tx.Type,
		StockName:     tx.StockName,
		Quantity:      tx.Quantity,
		PricePerShare: tx.PricePerShare,
		TotalValue:    tx.TotalValue,
		Time:          tx.Timestamp,
	}); err != nil {
		e.log.Error("journaling trade failed", "err", err)
	}
	return nil
}

// AddCustomStock lists a player-created stock. A duplicate name is a no-op;
// an unusable price becomes the default of 100. The new stock starts with a
// flat history, zero holdings and low volatility.
func (e *Engine) AddCustomStock(symbol, name string, initialPrice float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := state.Current(e.store)
	if data.FindStock(s.StockMarket.Stocks, symbol) != -1 {
		e.log.Warn("custom stock already exists", "name", symbol)
		return
	}

	price := initialPrice
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		price = 100
	}

	stock := data.Stock{
		Name:         symbol,
		Value:        price,
		Volatility:   0.02,
		Type:         "Technology",
		ValueHistory: market.FlatHistory(price, e.points, e.interval, e.now()),
		Quantity:     0,
		Custom:       true,
	}
	e.perform(actions.AddCustomStock(stock))
	e.notifier.Notify(notify.Notification{
		Level:   notify.Success,
		Title:   "Stock Added",
		Message: fmt.Sprintf("%s is now listed at $%.2f.", name, price),
	})
}

// DeleteStock removes a stock, refunding held shares at the current price
// first so deleting never destroys value.
func (e *Engine) DeleteStock(stockName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := state.Current(e.store)
	i := data.FindStock(s.StockMarket.Stocks, stockName)
	if i == -1 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Stock with name " + stockName + " could not be found"})
		return ErrStockNotFound
	}
	stock := s.StockMarket.Stocks[i]

	if stock.Quantity > 0 {
		refund := market.Round2(stock.Value * float64(stock.Quantity))
		e.perform(actions.ChangeAccountValue(refund))
		e.notifier.Notify(notify.Notification{
			Level:   notify.Info,
			Title:   "Stock Deleted",
			Message: fmt.Sprintf("%s deleted. Refunded $%.2f for %d shares.", stock.Name, refund, stock.Quantity),
		})
	} else {
		e.notifier.Notify(notify.Notification{
			Level:   notify.Info,
			Title:   "Stock Deleted",
			Message: fmt.Sprintf("%s has been removed from the market.", stock.Name),
		})
	}

	e.perform(actions.DeleteStock(stockName))
	return nil
}

// Earn pays out a random amount scaled by the upgrade multiplier.
func (e *Engine) Earn() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	multiplier := selectors.EarningsMultiplier(state.Current(e.store))
	base := e.rng.Intn(1000) + 1
	earned := math.Floor(float64(base) * multiplier)

	e.perform(actions.ChangeAccountValue(earned))
	e.notifier.Notify(notify.Notification{
		Level:   notify.Success,
		Title:   "Money Earned!",
		Message: fmt.Sprintf("You earned $%.2f!", earned),
	})
	return earned
}

// BuyUpgrade purchases one level of an upgrade.
func (e *Engine) BuyUpgrade(upgradeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := state.Current(e.store)
	i := data.FindUpgrade(s.Upgrades.Upgrades, upgradeID)
	if i == -1 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Upgrade not found"})
		return ErrUpgradeNotFound
	}
	upgrade := s.Upgrades.Upgrades[i]

	if upgrade.Level >= upgrade.MaxLevel {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: upgrade.Name + " is already at maximum level"})
		return ErrMaxLevelReached
	}
	if s.Depot.AccountValue < upgrade.Cost {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: fmt.Sprintf("Not enough money. You need $%.2f", upgrade.Cost)})
		return ErrInsufficientFunds
	}

	e.perform(actions.ChangeAccountValue(-upgrade.Cost))
	e.perform(actions.BuyUpgrade(upgradeID))
	e.notifier.Notify(notify.Notification{
		Level:   notify.Success,
		Title:   "Upgrade Purchased!",
		Message: fmt.Sprintf("%s upgraded to level %d", upgrade.Name, upgrade.Level+1),
	})
	return nil
}

// Gamble bets an amount on a coin flip: win doubles it back, lose forfeits
// it. The bet is rounded to cents and must fit in the balance.
func (e *Engine) Gamble(amount float64) (won bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bet := market.Round2(amount)
	if math.IsNaN(bet) || math.IsInf(bet, 0) || bet <= 0 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "Enter a valid amount above $0."})
		return false, ErrInvalidAmount
	}
	balance := market.Round2(selectors.AccountValue(state.Current(e.store)))
	if bet > balance+0.0001 {
		e.notifier.Notify(notify.Notification{Level: notify.Error, Message: "You cannot bet more than your account balance."})
		return false, ErrInsufficientFunds
	}

	won = e.rng.Float64() < 0.5
	delta := bet
	verb := "won"
	level := notify.Success
	if !won {
		delta = -bet
		verb = "lost"
		level = notify.Info
	}
	e.perform(actions.ChangeAccountValue(delta))
	e.notifier.Notify(notify.Notification{
		Level:   level,
		Message: fmt.Sprintf("You %s $%.2f.", verb, bet),
	})
	return won, nil
}

// Tick advances every stock by one price step, slides the history windows,
// records the analytics snapshot and journals equity. Live prices fetched
// since the last tick are merged in before the step; a fresh fetch for the
// next tick is kicked off afterwards without blocking.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	s := state.Current(e.store)
	live := e.takeLivePrices()

	updates := make([]actions.StockUpdate, 0, len(s.StockMarket.Stocks))
	for _, stock := range s.StockMarket.Stocks {
		if price, ok := live[stock.Name]; ok && price > 0 {
			stock.Value = market.Round2(price)
		}
		next := market.Advance(e.rng, stock, now)
		updates = append(updates, actions.StockUpdate{StockName: stock.Name, Stock: next})
	}
	e.perform(actions.UpdateStocks(updates))

	s = state.Current(e.store)
	balance := selectors.AccountValue(s)
	stockValue := selectors.StockValue(s)
	e.perform(actions.PushDevelopment(data.FinancialSnapshot{
		Value: market.Round2(balance + stockValue),
		Date:  now.Format("15:04"),
	}, e.points))

	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:       now,
		Balance:    balance,
		StockValue: stockValue,
		Capital:    balance + stockValue,
	}); err != nil {
		e.log.Error("journaling equity failed", "err", err)
	}

	e.refreshLivePrices(s.StockMarket.Stocks)
}

// Export serializes the full state tree as a backup document.
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return persist.Export(state.Current(e.store), e.now())
}

// ImportBackup replaces the whole state tree from a backup document. This
// is the one failure that must reach the player as a blocking error.
func (e *Engine) ImportBackup(raw []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	imported, err := persist.Import(raw, e.defaults)
	if err != nil {
		e.notifier.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Import Failed",
			Message: "The backup file could not be read. Your current game is unchanged.",
		})
		return err
	}
	// Restoring a backup of the current state changes nothing; dispatching
	// it anyway would be a zero-change perform the store never commits.
	if reflect.DeepEqual(imported, state.Current(e.store)) {
		e.notifier.Notify(notify.Notification{
			Level:   notify.Success,
			Title:   "Import Complete",
			Message: "Game state restored from backup.",
		})
		return nil
	}
	e.perform(actions.ReplaceState(imported))
	e.notifier.Notify(notify.Notification{
		Level:   notify.Success,
		Title:   "Import Complete",
		Message: "Game state restored from backup.",
	})
	return nil
}

// perform dispatches an action. Modifier semantics make actions on missing
// entities no-ops, so the only possible errors here come from middleware;
// they are logged, never propagated into game logic.
func (e *Engine) perform(a boutique.Action) {
	if err := e.store.Perform(a); err != nil {
		e.log.Error("state change failed", "action", a.Type, "err", err)
	}
}

// takeLivePrices drains the prices fetched since the last tick.
func (e *Engine) takeLivePrices() map[string]float64 {
	e.liveMu.Lock()
	defer e.liveMu.Unlock()
	live := e.livePrices
	e.livePrices = map[string]float64{}
	return live
}

// refreshLivePrices starts one background fetch of live prices for the
// mapped stocks. Results land in livePrices and are merged by the next
// tick; anything slower than that is simply discarded by the drain. The
// tick loop itself never waits on the network.
func (e *Engine) refreshLivePrices(stocks []data.Stock) {
	if e.quotes == nil || !e.quotes.Enabled() {
		return
	}

	e.liveMu.Lock()
	if e.fetching {
		e.liveMu.Unlock()
		return
	}
	e.fetching = true
	e.liveMu.Unlock()

	names := make([]string, 0, len(stocks))
	for _, s := range stocks {
		if _, ok := quotes.Symbol(s.Name); ok {
			names = append(names, s.Name)
		}
	}

	go func() {
		defer func() {
			e.liveMu.Lock()
			e.fetching = false
			e.liveMu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), e.interval)
		defer cancel()

		for _, name := range names {
			price, err := e.quotes.Price(ctx, name)
			if err != nil {
				continue // fall back to simulation for this stock
			}
			e.liveMu.Lock()
			e.livePrices[name] = price
			e.liveMu.Unlock()
		}
	}()
}
