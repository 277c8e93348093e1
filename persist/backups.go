package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Backup is one saved export document with its folder metadata.
type Backup struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Data       string `json:"data"`
	Timestamp  string `json:"timestamp"`
	Size       int    `json:"size"`
	ExportDate string `json:"exportDate"`
}

// folder is the backups file layout on disk.
type folder struct {
	Created      string   `json:"created"`
	LastModified string   `json:"lastModified"`
	Backups      []Backup `json:"backups"`
}

// Backups manages a folder of saved export documents in a single JSON file.
type Backups struct {
	Path string
}

// NewBackups returns a backups folder persisted at path.
func NewBackups(path string) *Backups {
	return &Backups{Path: path}
}

func (b *Backups) load() (folder, error) {
	raw, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			now := time.Now().UTC().Format(time.RFC3339)
			return folder{Created: now, LastModified: now, Backups: []Backup{}}, nil
		}
		return folder{}, fmt.Errorf("read backups folder: %w", err)
	}
	var f folder
	if err := json.Unmarshal(raw, &f); err != nil {
		return folder{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return f, nil
}

func (b *Backups) save(f folder) error {
	f.LastModified = time.Now().UTC().Format(time.RFC3339)
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backups folder: %w", err)
	}
	if err := os.WriteFile(b.Path, raw, 0o644); err != nil {
		return fmt.Errorf("write backups folder: %w", err)
	}
	return nil
}

// Add stores an export document under a generated id. An empty filename
// gets the dated default.
func (b *Backups) Add(doc []byte, filename string, exportDate time.Time) (Backup, error) {
	f, err := b.load()
	if err != nil {
		return Backup{}, err
	}

	now := time.Now().UTC()
	if filename == "" {
		filename = fmt.Sprintf("stockmarket-backup-%s.json", now.Format("2006-01-02"))
	}
	backup := Backup{
		ID:         "backup_" + uuid.NewString(),
		Filename:   filename,
		Data:       string(doc),
		Timestamp:  now.Format(time.RFC3339),
		Size:       len(doc),
		ExportDate: exportDate.UTC().Format(time.RFC3339),
	}
	f.Backups = append(f.Backups, backup)
	if err := b.save(f); err != nil {
		return Backup{}, err
	}
	return backup, nil
}

// List returns all backups, newest first.
func (b *Backups) List() ([]Backup, error) {
	f, err := b.load()
	if err != nil {
		return nil, err
	}
	backups := make([]Backup, len(f.Backups))
	copy(backups, f.Backups)
	for i, j := 0, len(backups)-1; i < j; i, j = i+1, j-1 {
		backups[i], backups[j] = backups[j], backups[i]
	}
	return backups, nil
}

// Get returns the backup with the given id, or false.
func (b *Backups) Get(id string) (Backup, bool, error) {
	f, err := b.load()
	if err != nil {
		return Backup{}, false, err
	}
	for _, backup := range f.Backups {
		if backup.ID == id {
			return backup, true, nil
		}
	}
	return Backup{}, false, nil
}

// Delete removes the backup with the given id. It reports whether an entry
// was actually removed.
func (b *Backups) Delete(id string) (bool, error) {
	f, err := b.load()
	if err != nil {
		return false, err
	}
	kept := make([]Backup, 0, len(f.Backups))
	for _, backup := range f.Backups {
		if backup.ID != id {
			kept = append(kept, backup)
		}
	}
	if len(kept) == len(f.Backups) {
		return false, nil
	}
	f.Backups = kept
	return true, b.save(f)
}

// Clear removes every backup.
func (b *Backups) Clear() error {
	now := time.Now().UTC().Format(time.RFC3339)
	return b.save(folder{Created: now, Backups: []Backup{}})
}

// Stats summarizes the folder.
type Stats struct {
	TotalBackups int    `json:"totalBackups"`
	TotalSize    int    `json:"totalSize"`
	Oldest       string `json:"oldestBackup,omitempty"`
	Newest       string `json:"newestBackup,omitempty"`
}

// Stat returns folder statistics.
func (b *Backups) Stat() (Stats, error) {
	f, err := b.load()
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{TotalBackups: len(f.Backups)}
	for _, backup := range f.Backups {
		stats.TotalSize += backup.Size
	}
	if len(f.Backups) > 0 {
		stats.Oldest = f.Backups[0].Timestamp
		stats.Newest = f.Backups[len(f.Backups)-1].Timestamp
	}
	return stats, nil
}
