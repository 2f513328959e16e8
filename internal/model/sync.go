package model

import "time"

// SyncSource identifies which data source satisfied a refresh.
type SyncSource string

const (
	SyncSourceLocal  SyncSource = "local"
	SyncSourceRemote SyncSource = "remote"
)

// SyncResult is the outcome record of one refresh attempt. The orchestrator
// retains exactly one of these at a time; it is overwritten, never appended.
type SyncResult struct {
	ID          string        `json:"id"`
	Success     bool          `json:"success"`
	EventsCount int           `json:"events_count"`
	Error       string        `json:"error,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration"`
	Source      SyncSource    `json:"source"`
}
