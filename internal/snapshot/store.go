// Package snapshot persists the catalog as a single durable JSON document
// with a bounded history of timestamped backups.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/contextsuite/catalogd/internal/model"
)

const (
	liveFileName  = "events.json"
	backupDirName = "backups"
	maxBackups    = 10
)

// Destination is an optional mirror target for snapshot documents (S3 etc.).
// Mirror failures are logged, never fatal to a save.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Info describes the live snapshot document.
type Info struct {
	Exists       bool                    `json:"exists"`
	Size         int64                   `json:"size,omitempty"`
	LastModified time.Time               `json:"last_modified,omitzero"`
	Metadata     *model.SnapshotMetadata `json:"metadata,omitempty"`
}

// Store reads and writes the snapshot document under a data directory.
// Writes go through a temp file and rename, so a crash mid-write leaves
// either the old document or the new one, never a mixture. The prior
// document is copied to a backup before each overwrite.
type Store struct {
	dataDir      string
	destinations []Destination
	logger       *slog.Logger
}

// New creates a store rooted at dataDir. Destinations, if any, receive the
// document bytes after each successful save.
func New(dataDir string, logger *slog.Logger, destinations ...Destination) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dataDir: dataDir, destinations: destinations, logger: logger}
}

func (s *Store) livePath() string {
	return filepath.Join(s.dataDir, liveFileName)
}

func (s *Store) backupDir() string {
	return filepath.Join(s.dataDir, backupDirName)
}

// Has reports whether the live document exists and is non-empty.
func (s *Store) Has() bool {
	fi, err := os.Stat(s.livePath())
	return err == nil && fi.Size() > 0
}

// Load reads and parses the live document. A missing file returns (nil, nil);
// read, parse, and structural-validation failures return an error, which
// callers treat as "no usable snapshot" and fall back to the remote source.
func (s *Store) Load() (*model.Snapshot, error) {
	data, err := os.ReadFile(s.livePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("loaded local snapshot",
		"events", len(snap.Events), "last_updated", snap.Metadata.LastUpdated)
	return &snap, nil
}

// Save writes the document, backing up the prior one first and pruning old
// backups. Configured mirror destinations receive the new bytes afterwards.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	if err := os.MkdirAll(s.backupDir(), 0o755); err != nil {
		return fmt.Errorf("create snapshot directories: %w", err)
	}

	if s.Has() {
		if err := s.createBackup(); err != nil {
			s.logger.Warn("failed to create snapshot backup", "err", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.livePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.livePath()); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if err := s.pruneBackups(); err != nil {
		s.logger.Warn("failed to prune snapshot backups", "err", err)
	}

	for _, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Warn("snapshot mirror write failed", "err", err)
		}
	}

	s.logger.Info("saved local snapshot", "events", len(snap.Events))
	return nil
}

// Clear deletes the live document; absence is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.livePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// ListBackups returns all backups, newest first by modification time.
func (s *Store) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			Timestamp: fi.ModTime(),
			Size:      fi.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RestoreFromBackup overwrites the live document with a backup's bytes
// verbatim. The backup is not re-validated; restoring a bad backup restores
// bad data, which is the operator's call to make.
func (s *Store) RestoreFromBackup(filename string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("invalid backup filename %q", filename)
	}
	data, err := os.ReadFile(filepath.Join(s.backupDir(), filename))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := os.WriteFile(s.livePath(), data, 0o644); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.logger.Info("restored snapshot from backup", "filename", filename)
	return nil
}

// Info returns filesystem and embedded metadata for the live document.
func (s *Store) Info() Info {
	fi, err := os.Stat(s.livePath())
	if err != nil {
		return Info{Exists: false}
	}
	info := Info{Exists: true, Size: fi.Size(), LastModified: fi.ModTime()}
	if snap, err := s.Load(); err == nil && snap != nil {
		info.Metadata = &snap.Metadata
	}
	return info
}

var backupTimestampReplacer = strings.NewReplacer(":", "-", ".", "-")

func (s *Store) createBackup() error {
	data, err := os.ReadFile(s.livePath())
	if err != nil {
		return fmt.Errorf("read current snapshot: %w", err)
	}

	ts := backupTimestampReplacer.Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	name := fmt.Sprintf("events-backup-%s.json", ts)
	if err := os.WriteFile(filepath.Join(s.backupDir(), name), data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

func (s *Store) pruneBackups() error {
	backups, err := s.ListBackups()
	if err != nil {
		return err
	}
	for _, backup := range backups[min(len(backups), maxBackups):] {
		if err := os.Remove(filepath.Join(s.backupDir(), backup.Filename)); err != nil {
			return fmt.Errorf("remove old backup %s: %w", backup.Filename, err)
		}
	}
	return nil
}
