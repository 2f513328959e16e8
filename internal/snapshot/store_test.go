package snapshot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/contextsuite/catalogd/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(t.TempDir(), logger)
}

func testSnapshot(names ...string) *model.Snapshot {
	events := make([]model.Event, 0, len(names))
	for _, name := range names {
		events = append(events, model.Event{
			AirtableID: "rec-" + name,
			Name:       name,
			Category:   "commerce",
			Domain:     "web",
			Topic:      name,
			TopicSlug:  model.Slugify(name),
		})
	}
	return model.NewSnapshot(events, model.FilterOptionsFrom(events), model.SnapshotSourceAirtable)
}

func TestStoreSaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot("order_completed", "cart_viewed")

	if store.Has() {
		t.Fatal("Has() = true before any save")
	}
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Has() {
		t.Fatal("Has() = false after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, snap) {
		t.Errorf("loaded snapshot differs:\n got %+v\nwant %+v", loaded, snap)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load on empty store: %v", err)
	}
	if snap != nil {
		t.Errorf("Load on empty store = %+v, want nil", snap)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.livePath(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("Load on corrupt file succeeded, want error")
	}
}

func TestStoreHasEmptyFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.livePath(), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Has() {
		t.Error("Has() = true for empty file")
	}
}

func TestStoreBackupOnOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot("first")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	backups, err := store.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Fatalf("backups after first save = %d, want 0", len(backups))
	}

	if err := store.Save(ctx, testSnapshot("second")); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	backups, err = store.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups after second save = %d, want 1", len(backups))
	}
	if backups[0].Size == 0 {
		t.Error("backup has zero size")
	}
}

func TestStorePrunesBackups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxBackups+5; i++ {
		if err := store.Save(ctx, testSnapshot("event")); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
		// Backup names carry millisecond timestamps; keep them distinct.
		time.Sleep(2 * time.Millisecond)
	}

	backups, err := store.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != maxBackups {
		t.Errorf("backups after %d saves = %d, want %d", maxBackups+5, len(backups), maxBackups)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at index %d", i)
		}
	}
}

func TestStoreRestoreFromBackup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := testSnapshot("original_event")
	if err := store.Save(ctx, original); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, testSnapshot("replacement_event")); err != nil {
		t.Fatal(err)
	}

	backups, err := store.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups = %d, want 1", len(backups))
	}

	if err := store.RestoreFromBackup(backups[0].Filename); err != nil {
		t.Fatalf("RestoreFromBackup: %v", err)
	}
	restored, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(restored, original) {
		t.Errorf("restored snapshot differs:\n got %+v\nwant %+v", restored, original)
	}
}

func TestStoreRestoreRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)
	if err := store.RestoreFromBackup("../events.json"); err == nil {
		t.Error("RestoreFromBackup with path traversal succeeded, want error")
	}
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := store.Save(context.Background(), testSnapshot("event")); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Has() {
		t.Error("Has() = true after Clear")
	}
}

func TestStoreInfo(t *testing.T) {
	store := newTestStore(t)

	info := store.Info()
	if info.Exists {
		t.Error("Info().Exists = true before save")
	}

	snap := testSnapshot("order_completed")
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	info = store.Info()
	if !info.Exists {
		t.Fatal("Info().Exists = false after save")
	}
	if info.Size == 0 {
		t.Error("Info().Size = 0 after save")
	}
	if info.Metadata == nil {
		t.Fatal("Info().Metadata = nil after save")
	}
	if info.Metadata.EventsCount != 1 {
		t.Errorf("Info().Metadata.EventsCount = %d, want 1", info.Metadata.EventsCount)
	}
	if info.Metadata.Version != model.SnapshotVersion {
		t.Errorf("Info().Metadata.Version = %q, want %q", info.Metadata.Version, model.SnapshotVersion)
	}
}

type captureDestination struct {
	writes int
	last   []byte
}

func (d *captureDestination) Write(_ context.Context, data []byte) error {
	d.writes++
	d.last = append([]byte(nil), data...)
	return nil
}

func TestStoreMirrorsToDestinations(t *testing.T) {
	dest := &captureDestination{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := New(t.TempDir(), logger, dest)

	if err := store.Save(context.Background(), testSnapshot("event")); err != nil {
		t.Fatal(err)
	}
	if dest.writes != 1 {
		t.Fatalf("destination writes = %d, want 1", dest.writes)
	}
	live, err := os.ReadFile(filepath.Join(store.dataDir, liveFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(dest.last) != string(live) {
		t.Error("mirrored bytes differ from live snapshot file")
	}
}
