// Package config loads and validates the game configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete game configuration.
type Config struct {
	Game     GameConfig     `json:"game" yaml:"game"`
	State    StateConfig    `json:"state" yaml:"state"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	API      APIConfig      `json:"api" yaml:"api"`
	LiveData LiveDataConfig `json:"live_data" yaml:"live_data"`
}

// GameConfig tunes the simulation itself.
type GameConfig struct {
	// StartingBalance is the cash a fresh game begins with.
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	// TickSeconds is the delay between price updates.
	TickSeconds int `json:"tick_seconds" yaml:"tick_seconds"`
	// HistoryPoints is the length of each stock's price history window.
	HistoryPoints int `json:"history_points" yaml:"history_points"`
}

// TickInterval returns the tick delay as a duration.
func (g GameConfig) TickInterval() time.Duration {
	return time.Duration(g.TickSeconds) * time.Second
}

// StateConfig says where the state tree and backups live on disk.
type StateConfig struct {
	File        string `json:"file" yaml:"file"`
	BackupsFile string `json:"backups_file" yaml:"backups_file"`
}

// JournalConfig selects the durable trade journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LiveDataConfig enables live quote enrichment. Keys come from the
// environment (see LoadEnvKeys), never from the config file.
type LiveDataConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	FinnhubKey      string `json:"-" yaml:"-"`
	AlphaVantageKey string `json:"-" yaml:"-"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		if jerr := json.Unmarshal(raw, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.LoadEnvKeys()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvKeys pulls quote API keys from the environment, reading a .env
// file first when one exists.
func (c *Config) LoadEnvKeys() {
	_ = godotenv.Load() // missing .env is fine
	c.LiveData.FinnhubKey = strings.TrimSpace(os.Getenv("FINNHUB_API_KEY"))
	c.LiveData.AlphaVantageKey = strings.TrimSpace(os.Getenv("ALPHA_VANTAGE_API_KEY"))
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Game.StartingBalance <= 0 {
		return fmt.Errorf("game.starting_balance must be positive")
	}
	if c.Game.TickSeconds <= 0 {
		return fmt.Errorf("game.tick_seconds must be positive")
	}
	if c.Game.HistoryPoints < 2 {
		return fmt.Errorf("game.history_points must be at least 2")
	}
	if c.State.File == "" {
		return fmt.Errorf("state.file is required")
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if c.API.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			StartingBalance: 10000,
			TickSeconds:     30,
			HistoryPoints:   10,
		},
		State: StateConfig{
			File:        "stockmarket_state.json",
			BackupsFile: "stockmarket_backups.json",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		API: APIConfig{
			Addr: ":8080",
		},
	}
}
