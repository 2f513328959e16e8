// Package catalog coordinates the remote source, the local snapshot, and the
// cache into one refresh pipeline, and serves all catalog reads from it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contextsuite/catalogd/internal/cache"
	"github.com/contextsuite/catalogd/internal/events"
	"github.com/contextsuite/catalogd/internal/idgen"
	"github.com/contextsuite/catalogd/internal/model"
	"github.com/contextsuite/catalogd/internal/snapshot"
)

// RemoteClient fetches catalog data from the remote source of truth.
type RemoteClient interface {
	FetchAll(ctx context.Context) ([]model.Event, error)
	FetchEventByID(ctx context.Context, id string) (*model.Event, error)
	FetchEventsByCategory(ctx context.Context, category string) ([]model.Event, error)
	FilterOptions(ctx context.Context) (model.FilterOptions, error)
}

// SnapshotStore persists catalog snapshots locally.
type SnapshotStore interface {
	Has() bool
	Load() (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
	Clear() error
	ListBackups() ([]snapshot.BackupInfo, error)
	RestoreFromBackup(filename string) error
	Info() snapshot.Info
}

// CacheStatus reports what the cache currently holds.
type CacheStatus struct {
	EventsLoaded  bool              `json:"events_loaded"`
	FiltersLoaded bool              `json:"filters_loaded"`
	Size          int               `json:"size"`
	MaxSize       int               `json:"max_size"`
	LastSync      *model.SyncResult `json:"last_sync,omitempty"`
}

// Service is the sync orchestrator. One refresh runs at a time; a refresh
// requested while another is in flight returns the previous outcome instead
// of starting a second fetch.
type Service struct {
	remote    RemoteClient
	store     SnapshotStore
	cache     *cache.Cache
	publisher events.Publisher
	logger    *slog.Logger

	mu         sync.Mutex
	refreshing bool
	lastResult *model.SyncResult
}

// New creates the orchestrator. A nil publisher disables event emission.
func New(remote RemoteClient, store SnapshotStore, c *cache.Cache, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, store: store, cache: c, publisher: pub, logger: logger}
}

// PrimeCache refreshes the catalog and fills the cache. The local snapshot is
// preferred when present and parseable; forceRemote bypasses it. The returned
// result is never nil; failures are reported through its Success and Error
// fields and leave the cache untouched.
func (s *Service) PrimeCache(ctx context.Context, forceRemote bool) *model.SyncResult {
	s.mu.Lock()
	if s.refreshing {
		last := s.lastResult
		s.mu.Unlock()
		if last != nil {
			return last
		}
		return &model.SyncResult{
			Success:   false,
			Error:     "refresh already in progress",
			Timestamp: time.Now().UTC(),
		}
	}
	s.refreshing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	start := time.Now()
	id, err := idgen.Generate()
	if err != nil {
		s.logger.Warn("failed to generate sync ID", "err", err)
	}
	result := &model.SyncResult{ID: id, Timestamp: start.UTC()}

	all, filters, source, err := s.loadEvents(ctx, forceRemote)
	result.Source = source
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		s.setLastResult(result)
		s.logger.Error("catalog refresh failed", "sync_id", id, "source", source, "err", err)
		s.publish(ctx, events.TopicSyncFailed, events.SyncFailed{Result: result})
		return result
	}

	s.prime(all, filters)
	result.Success = true
	result.EventsCount = len(all)
	result.Duration = time.Since(start)
	s.setLastResult(result)
	s.logger.Info("catalog refresh complete",
		"sync_id", id, "source", source, "events", len(all), "duration", result.Duration)
	s.publish(ctx, events.TopicSyncCompleted, events.SyncCompleted{Result: result})
	return result
}

// loadEvents picks the data source and returns its events and filter index.
// The local path needs a loadable, non-empty snapshot; anything less is
// logged and treated as absent.
func (s *Service) loadEvents(ctx context.Context, forceRemote bool) ([]model.Event, model.FilterOptions, model.SyncSource, error) {
	if !forceRemote && s.store.Has() {
		snap, err := s.store.Load()
		if err == nil && snap != nil && len(snap.Events) > 0 {
			return snap.Events, snap.FilterOptions, model.SyncSourceLocal, nil
		}
		if err != nil {
			s.logger.Warn("local snapshot unusable, falling back to remote", "err", err)
		}
	}

	all, err := s.remote.FetchAll(ctx)
	if err != nil {
		return nil, model.FilterOptions{}, model.SyncSourceRemote, err
	}
	filters := model.FilterOptionsFrom(all)

	snap := model.NewSnapshot(all, filters, model.SnapshotSourceAirtable)
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to save snapshot after remote fetch", "err", err)
	} else {
		s.publish(ctx, events.TopicSnapshotSaved, events.SnapshotSaved{
			EventsCount: len(all),
			Source:      string(model.SnapshotSourceAirtable),
			Timestamp:   snap.Metadata.LastUpdated,
		})
	}
	return all, filters, model.SyncSourceRemote, nil
}

// prime fills every cache key the read paths consume. Category groups are
// rebuilt from scratch each cycle, so events removed upstream drop out.
func (s *Service) prime(all []model.Event, filters model.FilterOptions) {
	s.cache.Set(cache.KeyAllEvents, all, cache.TTLAllEvents)
	s.cache.Set(cache.KeyFilterOptions, filters, cache.TTLFilterOptions)

	byCategory := make(map[string][]model.Event)
	for i := range all {
		ev := &all[i]
		if ev.AirtableID != "" {
			s.cache.Set(cache.KeyEventByID(ev.AirtableID), ev, cache.TTLEventByID)
		}
		if ev.TopicSlug != "" {
			s.cache.Set(cache.KeyEventBySlug(ev.TopicSlug), ev, cache.TTLEventBySlug)
		}
		if ev.Category != "" {
			byCategory[ev.Category] = append(byCategory[ev.Category], *ev)
		}
	}
	for category, group := range byCategory {
		s.cache.Set(cache.KeyEventsByCategory(category), group, cache.TTLEventsByCategory)
	}
}

// ShouldRefresh reports whether either primary key, the event list or the
// filter index, has expired or was never primed.
func (s *Service) ShouldRefresh() bool {
	return !s.cache.Has(cache.KeyAllEvents) || !s.cache.Has(cache.KeyFilterOptions)
}

// ForceRefresh discards the cache and re-primes from the preferred source.
func (s *Service) ForceRefresh(ctx context.Context) *model.SyncResult {
	s.cache.Clear()
	return s.PrimeCache(ctx, false)
}

// ForceRemoteReload discards the cache and re-primes from the remote source,
// bypassing any local snapshot.
func (s *Service) ForceRemoteReload(ctx context.Context) *model.SyncResult {
	s.cache.Clear()
	return s.PrimeCache(ctx, true)
}

// LastResult returns the most recent refresh outcome, or nil before the
// first refresh.
func (s *Service) LastResult() *model.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

func (s *Service) setLastResult(r *model.SyncResult) {
	s.mu.Lock()
	s.lastResult = r
	s.mu.Unlock()
}

// CacheStatus reports cache fill level and the last refresh outcome.
func (s *Service) CacheStatus() CacheStatus {
	stats := s.cache.Stats()
	return CacheStatus{
		EventsLoaded:  s.cache.Has(cache.KeyAllEvents),
		FiltersLoaded: s.cache.Has(cache.KeyFilterOptions),
		Size:          stats.Size,
		MaxSize:       stats.MaxSize,
		LastSync:      s.LastResult(),
	}
}

// GetAllEvents returns the full catalog, refreshing first on a cache miss.
func (s *Service) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	if all, ok := cache.Typed[[]model.Event](s.cache, cache.KeyAllEvents); ok {
		return all, nil
	}
	result := s.PrimeCache(ctx, false)
	if !result.Success {
		return nil, fmt.Errorf("catalog unavailable: %s", result.Error)
	}
	if all, ok := cache.Typed[[]model.Event](s.cache, cache.KeyAllEvents); ok {
		return all, nil
	}
	return nil, errors.New("catalog cache empty after refresh")
}

// GetEventByID returns one event by its source record ID, or nil when the
// remote has no such record.
func (s *Service) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	key := cache.KeyEventByID(id)
	if ev, ok := cache.Typed[*model.Event](s.cache, key); ok {
		return ev, nil
	}
	ev, err := s.remote.FetchEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		s.cache.Set(key, ev, cache.TTLEventByID)
		if ev.TopicSlug != "" {
			s.cache.Set(cache.KeyEventBySlug(ev.TopicSlug), ev, cache.TTLEventBySlug)
		}
	}
	return ev, nil
}

// GetEventBySlug returns one event by topic slug, or nil when no event
// carries it. Misses scan the full catalog rather than the remote, since
// slugs are assigned during transformation and unknown upstream.
func (s *Service) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	key := cache.KeyEventBySlug(slug)
	if ev, ok := cache.Typed[*model.Event](s.cache, key); ok {
		return ev, nil
	}
	all, err := s.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	ev := model.FindBySlug(all, slug)
	if ev != nil {
		s.cache.Set(key, ev, cache.TTLEventBySlug)
	}
	return ev, nil
}

// GetEventsByCategory returns the events in one category.
func (s *Service) GetEventsByCategory(ctx context.Context, category string) ([]model.Event, error) {
	return cache.GetOrSet(s.cache, cache.KeyEventsByCategory(category), cache.TTLEventsByCategory,
		func() ([]model.Event, error) {
			return s.remote.FetchEventsByCategory(ctx, category)
		})
}

// GetFilterOptions returns the filter index.
func (s *Service) GetFilterOptions(ctx context.Context) (model.FilterOptions, error) {
	return cache.GetOrSet(s.cache, cache.KeyFilterOptions, cache.TTLFilterOptions,
		func() (model.FilterOptions, error) {
			return s.remote.FilterOptions(ctx)
		})
}

// SnapshotInfo describes the live snapshot document.
func (s *Service) SnapshotInfo() snapshot.Info {
	return s.store.Info()
}

// ClearSnapshot deletes the local snapshot document. The cache is left
// intact; the next refresh will go remote.
func (s *Service) ClearSnapshot() error {
	return s.store.Clear()
}

// Backups lists snapshot backups, newest first.
func (s *Service) Backups() ([]snapshot.BackupInfo, error) {
	return s.store.ListBackups()
}

// RestoreBackup replaces the live snapshot with a backup and re-primes the
// cache from it.
func (s *Service) RestoreBackup(ctx context.Context, filename string) (*model.SyncResult, error) {
	if err := s.store.RestoreFromBackup(filename); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicSnapshotRestored, events.SnapshotRestored{Filename: filename})
	s.cache.Clear()
	return s.PrimeCache(ctx, false), nil
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}
