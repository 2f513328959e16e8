package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/contextsuite/catalogd/internal/airtable"
	"github.com/contextsuite/catalogd/internal/cache"
	"github.com/contextsuite/catalogd/internal/catalog"
	"github.com/contextsuite/catalogd/internal/config"
	"github.com/contextsuite/catalogd/internal/events"
	"github.com/contextsuite/catalogd/internal/server"
	"github.com/contextsuite/catalogd/internal/snapshot"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the catalogd server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Remote source client.
		remote := airtable.New(airtable.Config{
			APIKey:         cfg.AirtableAPIKey,
			BaseID:         cfg.AirtableBaseID,
			EventsTableID:  cfg.AirtableEventsTableID,
			AliasesTableID: cfg.AirtableAliasesTableID,
			RateLimitDelay: cfg.AirtableRateLimit,
			MaxRetries:     cfg.AirtableMaxRetries,
			Timeout:        cfg.AirtableTimeout,
		}, logger)

		// Snapshot store, with an optional S3 mirror.
		var destinations []snapshot.Destination
		if cfg.S3Bucket != "" {
			s3Dest, err := snapshot.NewS3Destination(
				context.Background(),
				cfg.S3Bucket,
				cfg.S3Key,
				cfg.S3Region,
				cfg.S3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 snapshot mirror", "err", err)
			} else {
				destinations = append(destinations, s3Dest)
				logger.Info("snapshot S3 mirror enabled", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
			}
		}
		store := snapshot.New(cfg.DataDir, logger, destinations...)

		// Cache with a durable file mirror under the data directory.
		c := cache.New(cache.Options{
			TTL:     cfg.CacheTTL,
			MaxSize: cfg.CacheMaxSize,
			Mirror:  cache.NewFileMirror(filepath.Join(cfg.DataDir, "cache.json")),
		}, logger)

		// Event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL, logger)
			if err != nil {
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (CATALOG_NATS_URL not set)")
		}

		svc := catalog.New(remote, store, c, publisher, logger)
		catalogServer := server.NewCatalogServer(svc, logger)

		// Prime before accepting traffic; a failure is logged, not fatal,
		// so the daemon can start while the remote source is down.
		result := svc.PrimeCache(context.Background(), false)
		catalogServer.Metrics().Observe(result)
		if !result.Success {
			logger.Warn("initial catalog prime failed", "err", result.Error)
		}

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: catalogServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		logger.Info("catalogd started", "http_addr", cfg.HTTPAddr, "data_dir", cfg.DataDir)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		return nil
	},
}
