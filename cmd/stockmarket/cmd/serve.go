package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockmarket/api"
	"stockmarket/config"
	"stockmarket/engine"
	"stockmarket/journal"
	"stockmarket/notify"
	"stockmarket/persist"
	"stockmarket/quotes"
	"stockmarket/state"
	"stockmarket/state/data"
	mw "stockmarket/state/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game server",
	Long: `Run the game: load the saved state (or seed a fresh market), start the
periodic price updates and serve the HTTP API.

Example:
  stockmarket serve --config stockmarket.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	defaults := data.Initial(cfg.Game.StartingBalance)

	stateStore := persist.NewStore(cfg.State.File)
	initial, found, err := stateStore.Load(defaults)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if found {
		log.Info("state restored", "file", cfg.State.File)
	} else {
		log.Info("starting a fresh game", "balance", cfg.Game.StartingBalance)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	persister := &mw.Persister{Store: stateStore}
	store, err := state.New(initial, persister.SaveOnCommit)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	var quoteClient *quotes.Client
	if cfg.LiveData.Enabled {
		quoteClient = &quotes.Client{
			FinnhubKey:      cfg.LiveData.FinnhubKey,
			AlphaVantageKey: cfg.LiveData.AlphaVantageKey,
		}
		if quoteClient.Enabled() {
			log.Info("live quote enrichment enabled")
		} else {
			log.Warn("live data enabled but no API keys found, using simulation only")
		}
	}

	hub := notify.NewHub(64)
	game := engine.New(store, engine.Config{
		HistoryPoints: cfg.Game.HistoryPoints,
		TickInterval:  cfg.Game.TickInterval(),
		Notifier:      hub,
		Journal:       j,
		Quotes:        quoteClient,
		Log:           log,
		Defaults:      defaults,
	})

	scheduler := engine.NewScheduler(game, cfg.Game.TickInterval(), log)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	server := api.New(log, game, persist.NewBackups(cfg.State.BackupsFile), hub)
	httpServer := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.API.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	scheduler.Stop()
	if err := stateStore.Save(game.Snapshot()); err != nil {
		log.Error("final state save failed", "err", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.LoadEnvKeys()
		return cfg, nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
