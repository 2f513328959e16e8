// Package server exposes the catalog over HTTP.
package server

import (
	"log/slog"

	"github.com/contextsuite/catalogd/internal/catalog"
)

// CatalogServer serves catalog reads and sync administration.
type CatalogServer struct {
	svc     *catalog.Service
	metrics *Metrics
	logger  *slog.Logger
}

// NewCatalogServer returns a server backed by the given orchestrator.
func NewCatalogServer(svc *catalog.Service, logger *slog.Logger) *CatalogServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogServer{
		svc:     svc,
		metrics: NewMetrics(svc),
		logger:  logger,
	}
}

// Metrics exposes the server's metrics recorder, so refreshes triggered
// outside the HTTP surface (e.g. at startup) can be observed too.
func (s *CatalogServer) Metrics() *Metrics {
	return s.metrics
}
