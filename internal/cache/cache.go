// Package cache provides a size-bounded TTL key/value store with an optional
// durable mirror for cross-restart persistence.
package cache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTTL applies to entries stored without an explicit TTL.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxSize bounds the number of entries before eviction kicks in.
	DefaultMaxSize = 200
)

type entry struct {
	data      any
	timestamp time.Time
	ttl       time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// Options configures a Cache.
type Options struct {
	TTL     time.Duration // default TTL for Set calls without one
	MaxSize int           // maximum entry count
	Mirror  Mirror        // optional durable mirror
}

// Stats reports the cache's current fill level.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`
}

// Cache is a mutex-guarded expiring key/value table. Values are opaque; use
// the package-level Typed and GetOrSet helpers for type-safe access. Eviction
// at capacity sweeps expired entries first, then removes the oldest-inserted
// live entry.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // insertion order, oldest first
	defaultTTL time.Duration
	maxSize    int
	mirror     Mirror
	logger     *slog.Logger
}

// New creates a cache. If opts.Mirror is set, previously mirrored entries are
// loaded and expired ones swept; mirror failures are logged, never fatal.
func New(opts Options, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: opts.TTL,
		maxSize:    opts.MaxSize,
		mirror:     opts.Mirror,
		logger:     logger,
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = DefaultTTL
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxSize
	}
	if c.mirror != nil {
		c.loadFromMirror()
	}
	return c
}

func (c *Cache) loadFromMirror() {
	stored, err := c.mirror.Load()
	if err != nil {
		c.logger.Warn("failed to load cache mirror", "err", err)
		return
	}
	c.mu.Lock()
	for key, me := range stored {
		c.entries[key] = &entry{data: me.Data, timestamp: me.Timestamp, ttl: me.TTL}
		c.order = append(c.order, key)
	}
	c.cleanupLocked(time.Now())
	c.mu.Unlock()
}

// Set stores value under key with the given TTL (or the default when ttl <= 0).
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	now := time.Now()
	// At capacity: sweep expired entries, then evict the oldest insertion.
	// The eviction runs even when key is already present and the table would
	// not grow; callers rely on that ordering staying stable.
	if len(c.entries) >= c.maxSize {
		c.cleanupLocked(now)
	}
	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &entry{data: value, timestamp: now, ttl: ttl}
	c.mu.Unlock()

	c.saveMirror()
}

// Get returns the live value for key. An expired entry is evicted as a side
// effect of the read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		c.removeLocked(key)
		return nil, false
	}
	return e.data, true
}

// Has reports whether key holds a live value.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key. It reports whether an entry was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	if ok {
		c.removeLocked(key)
	}
	c.mu.Unlock()

	if ok {
		c.saveMirror()
	}
	return ok
}

// Clear removes all entries and wipes the mirror.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.order = nil
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.Clear(); err != nil {
			c.logger.Warn("failed to clear cache mirror", "err", err)
		}
	}
}

// Cleanup sweeps all expired entries without touching live ones.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	c.cleanupLocked(time.Now())
	c.mu.Unlock()
}

// Stats returns the current size and configured capacity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries), MaxSize: c.maxSize}
}

func (c *Cache) cleanupLocked(now time.Time) {
	for key, e := range c.entries {
		if e.expired(now) {
			c.removeLocked(key)
		}
	}
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache) saveMirror() {
	if c.mirror == nil {
		return
	}

	c.mu.Lock()
	table := make(map[string]MirrorEntry, len(c.entries))
	for key, e := range c.entries {
		raw, err := json.Marshal(e.data)
		if err != nil {
			c.logger.Warn("skipping unmirrorable cache entry", "key", key, "err", err)
			continue
		}
		table[key] = MirrorEntry{Data: raw, Timestamp: e.timestamp, TTL: e.ttl}
	}
	c.mu.Unlock()

	if err := c.mirror.Save(table); err != nil {
		c.logger.Warn("failed to save cache mirror", "err", err)
	}
}

// Typed returns the value for key as T. Values restored from a mirror come
// back as raw JSON and are unmarshalled on demand.
func Typed[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	if raw, ok := v.(json.RawMessage); ok {
		var t T
		if err := json.Unmarshal(raw, &t); err == nil {
			return t, true
		}
	}
	return zero, false
}

// GetOrSet returns the cached value for key, or invokes fetch, stores the
// result, and returns it. A fetch failure propagates and nothing is cached.
// This is per-call-site convenience only; it does not deduplicate concurrent
// fetches for the same key.
func GetOrSet[T any](c *Cache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if v, ok := Typed[T](c, key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}
