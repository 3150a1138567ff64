package storage

import (
	"context"
	"os"
	"path/filepath"

	"bounded-cache/internal/cache"
	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

// File persists snapshots as a JSON pair list at a fixed path.
//
// A missing or corrupt file loads as empty, and failed writes are
// dropped after a logged warning. Durability here is best effort; the
// cache never learns about adapter failures.
type File[K comparable, V any] struct {
	path    string
	logger  *logs.Logger
	metrics *metrics.Registry
}

func NewFile[K comparable, V any](path string, logger *logs.Logger, reg *metrics.Registry) *File[K, V] {
	return &File[K, V]{path: path, logger: logger, metrics: reg}
}

func (f *File[K, V]) Load(_ context.Context) cache.Snapshot[K, V] {
	f.metrics.Inc(metrics.StorageLoadsTotal)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.metrics.Inc(metrics.StorageLoadFailuresTotal)
			f.logger.Warn("read snapshot %s: %v", f.path, err)
		}
		return cache.Snapshot[K, V]{}
	}

	snap, err := decodeSnapshot[K, V](data)
	if err != nil {
		f.metrics.Inc(metrics.StorageLoadFailuresTotal)
		f.logger.Warn("corrupt snapshot %s: %v", f.path, err)
		return cache.Snapshot[K, V]{}
	}
	return snap
}

func (f *File[K, V]) Save(_ context.Context, snap cache.Snapshot[K, V]) {
	f.metrics.Inc(metrics.StorageSavesTotal)

	data, err := encodeSnapshot(snap)
	if err != nil {
		f.metrics.Inc(metrics.StorageSaveFailuresTotal)
		f.logger.Warn("encode snapshot: %v", err)
		return
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			f.metrics.Inc(metrics.StorageSaveFailuresTotal)
			f.logger.Warn("create snapshot dir %s: %v", dir, err)
			return
		}
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		f.metrics.Inc(metrics.StorageSaveFailuresTotal)
		f.logger.Warn("write snapshot %s: %v", f.path, err)
	}
}

func (f *File[K, V]) Clear(_ context.Context) {
	f.metrics.Inc(metrics.StorageClearsTotal)

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("remove snapshot %s: %v", f.path, err)
	}
}
