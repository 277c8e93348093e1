// Package persist stores the state tree on disk: the working snapshot the
// game reloads on start, portable export/import documents, and a managed
// backups folder. It is the localStorage stand-in.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"stockmarket/state/data"
)

// Version tags export documents so older importers can refuse newer dumps.
const Version = "1.0"

// ErrCorrupt reports stored or imported JSON that cannot be decoded. This is
// the one persistence failure the user has to see and act on.
var ErrCorrupt = errors.New("persisted state is corrupt")

// Meta is the persistence marker stored alongside the tree.
type Meta struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

// snapshot is the on-disk layout. The tree's top-level keys are stored
// individually so a load with missing keys can default just those parts.
type snapshot struct {
	Depot        *data.Depot        `json:"depot,omitempty"`
	StockMarket  *data.StockMarket  `json:"stockMarket,omitempty"`
	Transactions *data.Transactions `json:"transactions,omitempty"`
	Upgrades     *data.Upgrades     `json:"upgrades,omitempty"`
	Meta         *Meta              `json:"_persist,omitempty"`
}

// Document is a portable full-state export.
type Document struct {
	Depot        data.Depot        `json:"depot"`
	StockMarket  data.StockMarket  `json:"stockMarket"`
	Transactions data.Transactions `json:"transactions"`
	Upgrades     data.Upgrades     `json:"upgrades"`
	ExportDate   string            `json:"exportDate"`
	Version      string            `json:"version"`
}

// Store reads and writes the working snapshot at a fixed path.
type Store struct {
	Path string
}

// NewStore returns a Store persisting to path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the snapshot. Missing file is not an error: it returns the
// given defaults and found=false. Keys absent from the file keep their
// defaults, so old snapshots survive new state fields. Undecodable JSON
// returns ErrCorrupt.
func (st *Store) Load(defaults data.State) (s data.State, found bool, err error) {
	raw, err := os.ReadFile(st.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, false, nil
		}
		return defaults, false, fmt.Errorf("read state file: %w", err)
	}
	s, err = merge(raw, defaults)
	if err != nil {
		return defaults, false, err
	}
	return s, true, nil
}

// Save writes the snapshot atomically: write a temp file, sync, rename.
// A crash mid-save leaves the previous snapshot intact.
func (st *Store) Save(s data.State) error {
	snap := snapshot{
		Depot:        &s.Depot,
		StockMarket:  &s.StockMarket,
		Transactions: &s.Transactions,
		Upgrades:     &s.Upgrades,
		Meta:         &Meta{Version: 1, SavedAt: time.Now().UTC()},
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := st.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Export serializes the full tree as a portable document with exportDate
// and version attached.
func Export(s data.State, now time.Time) ([]byte, error) {
	doc := Document{
		Depot:        s.Depot,
		StockMarket:  s.StockMarket,
		Transactions: s.Transactions,
		Upgrades:     s.Upgrades,
		ExportDate:   now.UTC().Format(time.RFC3339),
		Version:      Version,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import parses an export document back into a state tree. Missing keys
// fall back to defaults; broken JSON is ErrCorrupt.
func Import(raw []byte, defaults data.State) (data.State, error) {
	return merge(raw, defaults)
}

func merge(raw []byte, defaults data.State) (data.State, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s := defaults
	if snap.Depot != nil {
		s.Depot = *snap.Depot
	}
	if snap.StockMarket != nil {
		s.StockMarket = *snap.StockMarket
	}
	if snap.Transactions != nil {
		s.Transactions = *snap.Transactions
	}
	if snap.Upgrades != nil {
		s.Upgrades = *snap.Upgrades
	}
	return s, nil
}
