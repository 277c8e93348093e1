package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmarket/engine"
	"stockmarket/notify"
	"stockmarket/persist"
	"stockmarket/state"
	"stockmarket/state/data"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()

	initial := data.Initial(1000)
	initial.StockMarket.Stocks = []data.Stock{
		{Name: "ACME", Value: 10, Volatility: 2, Type: "Technology",
			ValueHistory: []data.FinancialSnapshot{{Value: 10, Date: "12:00"}}},
	}
	store, err := state.New(initial)
	require.NoError(t, err)

	hub := notify.NewHub(16)
	game := engine.New(store, engine.Config{
		HistoryPoints: 10,
		TickInterval:  30 * time.Second,
		Notifier:      hub,
		Rand:          rand.New(rand.NewSource(1)),
		Defaults:      data.Initial(1000),
	})

	backups := persist.NewBackups(filepath.Join(t.TempDir(), "backups.json"))
	return New(nil, game, backups, hub), game
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMarket(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/v1/market", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var market data.StockMarket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &market))
	require.Len(t, market.Stocks, 1)
	assert.Equal(t, "ACME", market.Stocks[0].Name)
}

func TestPlaceOrder(t *testing.T) {
	t.Parallel()

	s, game := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/v1/orders", map[string]any{
		"stockName": "ACME", "amount": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tx data.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	assert.Equal(t, data.Buy, tx.Type)
	assert.Equal(t, 5, tx.Quantity)
	assert.InDelta(t, 950.0, game.Snapshot().Depot.AccountValue, 1e-9)
}

func TestOrderErrorsMapToStatusCodes(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"unknown stock", map[string]any{"stockName": "ghost", "amount": 1}, http.StatusNotFound},
		{"zero amount", map[string]any{"stockName": "ACME", "amount": 0}, http.StatusBadRequest},
		{"insufficient funds", map[string]any{"stockName": "ACME", "amount": 1000}, http.StatusUnprocessableEntity},
		{"selling unheld", map[string]any{"stockName": "ACME", "amount": -1}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/v1/orders", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestDepotView(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/v1/orders", map[string]any{"stockName": "ACME", "amount": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/depot", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var depot struct {
		AccountValue float64 `json:"accountValue"`
		StockValue   float64 `json:"stockValue"`
		Capital      float64 `json:"capital"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &depot))
	assert.InDelta(t, 980.0, depot.AccountValue, 1e-9)
	assert.InDelta(t, 20.0, depot.StockValue, 1e-9)
	assert.InDelta(t, 1000.0, depot.Capital, 1e-9)
}

func TestCustomStockLifecycle(t *testing.T) {
	t.Parallel()

	s, game := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/stocks", map[string]any{
		"symbol": "FOO", "name": "Foo Corp", "initialPrice": 42.0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, game.Snapshot().StockMarket.Stocks, 2)

	w = doJSON(t, s, http.MethodDelete, "/v1/stocks/FOO", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, game.Snapshot().StockMarket.Stocks, 1)

	w = doJSON(t, s, http.MethodDelete, "/v1/stocks/FOO", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/v1/stocks", map[string]any{"name": "no symbol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuyUpgradeRoute(t *testing.T) {
	t.Parallel()

	s, game := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/upgrades/boost-1/buy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 500.0, game.Snapshot().Depot.AccountValue, 1e-9)

	w = doJSON(t, s, http.MethodPost, "/v1/upgrades/ghost/buy", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 500 left, boost-1 now costs 575.
	w = doJSON(t, s, http.MethodPost, "/v1/upgrades/boost-1/buy", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEarnRoute(t *testing.T) {
	t.Parallel()

	s, game := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/v1/earn", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Earned float64 `json:"earned"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Earned, 1.0)
	assert.InDelta(t, 1000+resp.Earned, game.Snapshot().Depot.AccountValue, 1e-9)
}

func TestGambleRoute(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/gamble", map[string]any{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/v1/gamble", map[string]any{"amount": 5000})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, s, http.MethodPost, "/v1/gamble", map[string]any{"amount": 100})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Won *bool `json:"won"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Won)
}

func TestExportImportRoutes(t *testing.T) {
	t.Parallel()

	s, game := newTestServer(t)
	require.Equal(t, http.StatusOK,
		doJSON(t, s, http.MethodPost, "/v1/orders", map[string]any{"stockName": "ACME", "amount": 4}).Code)

	w := doJSON(t, s, http.MethodGet, "/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	// Trade some more, then restore the exported snapshot.
	require.Equal(t, http.StatusOK,
		doJSON(t, s, http.MethodPost, "/v1/orders", map[string]any{"stockName": "ACME", "amount": 10}).Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/import", bytes.NewReader(exported))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := game.Snapshot()
	assert.Equal(t, 4, snap.StockMarket.Stocks[0].Quantity)
	assert.InDelta(t, 960.0, snap.Depot.AccountValue, 1e-9)
}

func TestImportCorruptRoute(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/import", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupsRoutes(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/backups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved persist.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)

	w = doJSON(t, s, http.MethodGet, "/v1/backups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []persist.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = doJSON(t, s, http.MethodGet, "/v1/backups/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/v1/backups/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/backups/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationsDrain(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	// A failed order produces one notification.
	doJSON(t, s, http.MethodPost, "/v1/orders", map[string]any{"stockName": "ghost", "amount": 1})

	w := doJSON(t, s, http.MethodGet, "/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []notify.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, notify.Error, pending[0].Level)

	// Drained: a second poll is empty.
	w = doJSON(t, s, http.MethodGet, "/v1/notifications", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Empty(t, pending)
}
