package cartstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshotFile is the durable local snapshot of the client cart, surviving
// restarts the way the browser cart survives reloads. Disposable: the store
// can always be rebuilt from the server without losing authoritative data.
type snapshotFile struct {
	Items   []ClientCartItem `json:"items"`
	Total   float64          `json:"total"`
	SavedAt time.Time        `json:"saved_at"`
}

// DefaultSnapshotPath places the snapshot under the user config directory.
func DefaultSnapshotPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "storefront", "cart-storage.json"), nil
}

// SaveSnapshot writes the current items to path, creating parent directories
// as needed.
func (s *Store) SaveSnapshot(path string) error {
	snap := snapshotFile{
		Items:   s.Items(),
		Total:   s.Total(),
		SavedAt: time.Now(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores items from path. A missing file is not an error; the
// store simply starts empty. Total is recomputed from the loaded items, never
// trusted from the file.
func (s *Store) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cart snapshot: %w", err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode cart snapshot: %w", err)
	}
	s.SetItems(snap.Items)
	return nil
}
