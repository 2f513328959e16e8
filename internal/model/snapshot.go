package model

import (
	"fmt"
	"time"
)

// SnapshotVersion is the schema version written into snapshot metadata.
const SnapshotVersion = "1.0.0"

// SnapshotSource tags where the data in a snapshot came from.
type SnapshotSource string

const (
	SnapshotSourceAirtable SnapshotSource = "airtable"
	SnapshotSourceManual   SnapshotSource = "manual"
)

// SnapshotMetadata describes a snapshot document.
type SnapshotMetadata struct {
	LastUpdated string         `json:"lastUpdated"`
	Source      SnapshotSource `json:"source"`
	EventsCount int            `json:"eventsCount"`
	Version     string         `json:"version"`
}

// Snapshot is the durable on-disk representation of the catalog: the full
// event list, the derived filter index, and metadata.
type Snapshot struct {
	Events        []Event          `json:"events"`
	FilterOptions FilterOptions    `json:"filterOptions"`
	Metadata      SnapshotMetadata `json:"metadata"`
}

// NewSnapshot builds a snapshot from a synced event list, deriving the filter
// index and stamping fresh metadata tagged with the given source.
func NewSnapshot(events []Event, opts FilterOptions, source SnapshotSource) *Snapshot {
	return &Snapshot{
		Events:        events,
		FilterOptions: opts,
		Metadata: SnapshotMetadata{
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			Source:      source,
			EventsCount: len(events),
			Version:     SnapshotVersion,
		},
	}
}

// Validate performs the structural checks a loaded snapshot must pass before
// it can be trusted: the event list and all three filter lists must be
// present, and metadata must carry a timestamp. A snapshot failing these is
// treated as absent by callers, who then fall back to the remote source.
func (s *Snapshot) Validate() error {
	if s.Events == nil {
		return fmt.Errorf("snapshot: missing events list")
	}
	if s.FilterOptions.Categories == nil || s.FilterOptions.Domains == nil || s.FilterOptions.Verticals == nil {
		return fmt.Errorf("snapshot: incomplete filter options")
	}
	if s.Metadata.LastUpdated == "" {
		return fmt.Errorf("snapshot: metadata missing lastUpdated")
	}
	return nil
}
