package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MirrorEntry is the serialized form of one cache entry.
type MirrorEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Mirror persists the full cache table so entries survive a restart.
// The cache serializes the whole table after every mutating operation.
type Mirror interface {
	Save(entries map[string]MirrorEntry) error
	Load() (map[string]MirrorEntry, error)
	Clear() error
}

// FileMirror stores the cache table as a single JSON file.
type FileMirror struct {
	path string
}

// NewFileMirror creates a mirror backed by the given file path.
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Save writes the table atomically (temp file + rename).
func (m *FileMirror) Save(entries map[string]MirrorEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache mirror: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create mirror directory: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache mirror: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace cache mirror: %w", err)
	}
	return nil
}

// Load reads the mirrored table. A missing file is an empty table.
func (m *FileMirror) Load() (map[string]MirrorEntry, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]MirrorEntry{}, nil
		}
		return nil, fmt.Errorf("read cache mirror: %w", err)
	}
	entries := make(map[string]MirrorEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cache mirror: %w", err)
	}
	return entries, nil
}

// Clear removes the mirror file; absence is not an error.
func (m *FileMirror) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache mirror: %w", err)
	}
	return nil
}
