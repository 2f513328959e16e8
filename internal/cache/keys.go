package cache

import "time"

// Well-known keys for catalog data. Point-query entries are seeded during
// priming so reads avoid re-scanning the full event list.
const (
	KeyAllEvents     = "airtable:all_events"
	KeyFilterOptions = "airtable:filter_options"
)

// KeyEventByID returns the cache key for a single event lookup by source ID.
func KeyEventByID(id string) string {
	return "airtable:event:" + id
}

// KeyEventBySlug returns the cache key for a single event lookup by slug.
func KeyEventBySlug(slug string) string {
	return "airtable:event:slug:" + slug
}

// KeyEventsByCategory returns the cache key for a category grouping.
func KeyEventsByCategory(category string) string {
	return "airtable:events:category:" + category
}

// Per-key TTLs for catalog data.
const (
	TTLAllEvents        = 5 * time.Minute
	TTLFilterOptions    = 10 * time.Minute
	TTLEventByID        = 10 * time.Minute
	TTLEventBySlug      = 10 * time.Minute
	TTLEventsByCategory = 7 * time.Minute
)
