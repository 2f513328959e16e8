package events

import (
	"context"

	"github.com/contextsuite/catalogd/internal/model"
)

// Event topic constants
const (
	TopicSyncCompleted    = "catalog.sync.completed"
	TopicSyncFailed       = "catalog.sync.failed"
	TopicSnapshotSaved    = "catalog.snapshot.saved"
	TopicSnapshotRestored = "catalog.snapshot.restored"
)

// Event types

type SyncCompleted struct {
	Result *model.SyncResult `json:"result"`
}

type SyncFailed struct {
	Result *model.SyncResult `json:"result"`
}

type SnapshotSaved struct {
	EventsCount int    `json:"events_count"`
	Source      string `json:"source"`
	Timestamp   string `json:"timestamp"`
}

type SnapshotRestored struct {
	Filename string `json:"filename"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
