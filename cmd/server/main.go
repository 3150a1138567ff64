package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bounded-cache/internal/api"
	"bounded-cache/internal/cache"
	"bounded-cache/internal/config"
	"bounded-cache/internal/events"
	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
	"bounded-cache/internal/persist"
	"bounded-cache/internal/storage"
)

func main() {
	cfg := config.Default()
	flag.IntVar(&cfg.Cache.Capacity, "capacity", cfg.Cache.Capacity, "maximum number of cached entries")
	flag.DurationVar(&cfg.Cache.DefaultTTL, "default-ttl", cfg.Cache.DefaultTTL, "TTL for writes without an explicit one (0 = never expire)")
	flag.BoolVar(&cfg.Cache.SaveOnChange, "save-on-change", cfg.Cache.SaveOnChange, "snapshot to storage after every mutation")
	flag.StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "persistence backend: memory, file or sqlite")
	flag.StringVar(&cfg.Storage.FilePath, "snapshot-file", cfg.Storage.FilePath, "snapshot path for the file backend")
	flag.StringVar(&cfg.Storage.DatabasePath, "database", cfg.Storage.DatabasePath, "database path for the sqlite backend")
	flag.DurationVar(&cfg.Autosave.Interval, "autosave-interval", cfg.Autosave.Interval, "snapshot interval when save-on-change is off (0 = disabled)")
	flag.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "listen address")
	flag.Parse()

	// Signal-aware root context; cancellation drives a clean shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger
	logger := logs.NewLogger(1000, logs.DEBUG)

	// Metrics
	registry := metrics.NewRegistry()

	// Storage adapter
	adapter, err := newAdapter(cfg.Storage, logger, registry)
	if err != nil {
		log.Fatal(err)
	}

	// Cache
	kv := cache.New[string, string](cache.Config{
		Capacity:     cfg.Cache.Capacity,
		DefaultTTL:   cfg.Cache.DefaultTTL,
		SaveOnChange: cfg.Cache.SaveOnChange,
	}, adapter, registry)

	// Autosaver (manual-persistence mode only)
	if !cfg.Cache.SaveOnChange && cfg.Autosave.Interval > 0 {
		autosaver := persist.NewAutosaver(kv, cfg.Autosave.Interval, logger, registry)
		go autosaver.Start(ctx)
	}

	// Change feed
	hub := events.NewHub()

	// API
	handler := api.NewHandler(kv, registry, logger, hub)
	router := api.RegisterRoutes(handler)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Flush one last snapshot so manual-save mode loses nothing.
		kv.Save(shutdownCtx)
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("server started on %s", cfg.Server.Addr)
	log.Printf("listening on %s (backend=%s, capacity=%d)",
		cfg.Server.Addr, cfg.Storage.Backend, cfg.Cache.Capacity)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newAdapter(cfg config.StorageConfig, logger *logs.Logger, registry *metrics.Registry) (cache.Adapter[string, string], error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemory[string, string](), nil
	case "file":
		return storage.NewFile[string, string](cfg.FilePath, logger, registry), nil
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return storage.NewSQLite[string, string](db, cfg.SnapshotName, logger, registry), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
