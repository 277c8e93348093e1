// Package api exposes the game over HTTP. Handlers are thin: decode,
// delegate to the engine or selectors, encode. No game rules live here.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockmarket/engine"
	"stockmarket/notify"
	"stockmarket/persist"
	"stockmarket/state/selectors"
)

// Server routes HTTP traffic to one game engine.
type Server struct {
	log     *slog.Logger
	game    *engine.Engine
	backups *persist.Backups
	hub     *notify.Hub
	feed    <-chan notify.Notification
	mux     *chi.Mux
}

// New builds the server. The hub and backups folder are optional.
func New(logger *slog.Logger, game *engine.Engine, backups *persist.Backups, hub *notify.Hub) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:     logger,
		game:    game,
		backups: backups,
		hub:     hub,
		mux:     chi.NewRouter(),
	}
	if hub != nil {
		if feed, err := hub.Attach(); err == nil {
			s.feed = feed
		} else {
			logger.Warn("notification feed unavailable", "err", err)
		}
	}
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/market", s.handleMarket)
		r.Get("/depot", s.handleDepot)
		r.Get("/transactions", s.handleTransactions)
		r.Get("/upgrades", s.handleUpgrades)
		r.Get("/notifications", s.handleNotifications)

		r.Post("/orders", s.handleOrder)
		r.Post("/stocks", s.handleAddStock)
		r.Delete("/stocks/{name}", s.handleDeleteStock)
		r.Post("/upgrades/{id}/buy", s.handleBuyUpgrade)
		r.Post("/earn", s.handleEarn)
		r.Post("/gamble", s.handleGamble)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Get("/backups", s.handleBackupsList)
		r.Post("/backups", s.handleBackupsSave)
		r.Get("/backups/{id}", s.handleBackupGet)
		r.Delete("/backups/{id}", s.handleBackupDelete)
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Snapshot().StockMarket)
}

func (s *Server) handleDepot(w http.ResponseWriter, _ *http.Request) {
	snap := s.game.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"accountValue": selectors.AccountValue(snap),
		"stockValue":   selectors.StockValue(snap),
		"capital":      selectors.Capital(snap),
		"possessed":    selectors.PossessedStocks(snap),
		"categories":   selectors.CategoryValues(snap),
		"development":  selectors.Development(snap),
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Snapshot().Transactions)
}

func (s *Server) handleUpgrades(w http.ResponseWriter, _ *http.Request) {
	snap := s.game.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"upgrades":   snap.Upgrades.Upgrades,
		"multiplier": selectors.EarningsMultiplier(snap),
	})
}

// handleNotifications drains pending notifications without blocking, so
// polling clients get FIFO batches and an empty list when nothing happened.
func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	pending := []notify.Notification{}
	if s.feed != nil {
		for {
			select {
			case n := <-s.feed:
				pending = append(pending, n)
				continue
			default:
			}
			break
		}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StockName string `json:"stockName"`
		Amount    int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.game.BuyOrSell(req.StockName, req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.game.Snapshot().Transactions.Entries[0])
}

func (s *Server) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol       string  `json:"symbol"`
		Name         string  `json:"name"`
		InitialPrice float64 `json:"initialPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	s.game.AddCustomStock(req.Symbol, req.Name, req.InitialPrice)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := s.game.DeleteStock(chi.URLParam(r, "name")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	if err := s.game.BuyUpgrade(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleEarn(w http.ResponseWriter, _ *http.Request) {
	earned := s.game.Earn()
	writeJSON(w, http.StatusOK, map[string]any{"earned": earned})
}

func (s *Server) handleGamble(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	won, err := s.game.Gamble(req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"won": won})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	doc, err := s.game.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="stockmarket-backup.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if err := s.game.ImportBackup(raw); err != nil {
		writeError(w, http.StatusBadRequest, "backup file is corrupt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleBackupsList(w http.ResponseWriter, _ *http.Request) {
	if s.backups == nil {
		writeError(w, http.StatusNotFound, "backups are not configured")
		return
	}
	list, err := s.backups.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing backups failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleBackupsSave(w http.ResponseWriter, _ *http.Request) {
	if s.backups == nil {
		writeError(w, http.StatusNotFound, "backups are not configured")
		return
	}
	doc, err := s.game.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	backup, err := s.backups.Add(doc, "", time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "saving backup failed")
		return
	}
	writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleBackupGet(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		writeError(w, http.StatusNotFound, "backups are not configured")
		return
	}
	backup, found, err := s.backups.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading backup failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleBackupDelete(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		writeError(w, http.StatusNotFound, "backups are not configured")
		return
	}
	removed, err := s.backups.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "deleting backup failed")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// writeEngineError maps domain failures onto HTTP statuses. The player
// already got a notification; this is for API callers.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrStockNotFound), errors.Is(err, engine.ErrUpgradeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInsufficientHoldings),
		errors.Is(err, engine.ErrMaxLevelReached):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
