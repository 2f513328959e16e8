// Package client provides a transport-agnostic interface for the catalogd
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/contextsuite/catalogd/internal/catalog"
	"github.com/contextsuite/catalogd/internal/model"
	"github.com/contextsuite/catalogd/internal/snapshot"
)

// CatalogClient is the interface that all catalogd CLI commands use to
// communicate with the daemon. It is implemented by HTTPClient (default) and
// can be backed by any transport.
type CatalogClient interface {
	// Catalog reads
	Events(ctx context.Context) ([]model.Event, error)
	EventByID(ctx context.Context, id string) (*model.Event, error)
	EventBySlug(ctx context.Context, slug string) (*model.Event, error)
	EventsByCategory(ctx context.Context, category string) ([]model.Event, error)
	Filters(ctx context.Context) (model.FilterOptions, error)

	// Sync administration
	Refresh(ctx context.Context, remote bool) (*model.SyncResult, error)
	Reload(ctx context.Context) (*model.SyncResult, error)
	LastSync(ctx context.Context) (*model.SyncResult, error)
	CacheStatus(ctx context.Context) (*catalog.CacheStatus, error)

	// Snapshot administration
	SnapshotInfo(ctx context.Context) (*snapshot.Info, error)
	ClearSnapshot(ctx context.Context) error
	ListBackups(ctx context.Context) ([]snapshot.BackupInfo, error)
	RestoreBackup(ctx context.Context, filename string) (*model.SyncResult, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}
