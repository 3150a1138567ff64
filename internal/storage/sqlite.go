package storage

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bounded-cache/internal/cache"
	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

// snapshotRow is the single row a SQLite-backed cache maintains: the
// whole snapshot as one JSON blob under a fixed name, the way a
// key-value store keeps everything under one storage key.
type snapshotRow struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "cache_snapshots" }

// OpenSQLite opens (creating if needed) the snapshot database at path.
// glebarez/sqlite is a pure Go driver, so no CGO is required.
func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// SQLite persists snapshots as a single upserted row. The name column
// lets several caches share one database file.
type SQLite[K comparable, V any] struct {
	db      *gorm.DB
	name    string
	logger  *logs.Logger
	metrics *metrics.Registry
}

// NewSQLite prepares the snapshot table and returns the adapter. The
// caller owns the gorm handle.
func NewSQLite[K comparable, V any](db *gorm.DB, name string, logger *logs.Logger, reg *metrics.Registry) *SQLite[K, V] {
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		logger.Warn("migrate snapshot table: %v", err)
	}
	return &SQLite[K, V]{db: db, name: name, logger: logger, metrics: reg}
}

func (s *SQLite[K, V]) Load(ctx context.Context) cache.Snapshot[K, V] {
	s.metrics.Inc(metrics.StorageLoadsTotal)

	var row snapshotRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", s.name).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.Inc(metrics.StorageLoadFailuresTotal)
			s.logger.Warn("load snapshot %q: %v", s.name, err)
		}
		return cache.Snapshot[K, V]{}
	}

	snap, err := decodeSnapshot[K, V](row.Data)
	if err != nil {
		s.metrics.Inc(metrics.StorageLoadFailuresTotal)
		s.logger.Warn("corrupt snapshot %q: %v", s.name, err)
		return cache.Snapshot[K, V]{}
	}
	return snap
}

func (s *SQLite[K, V]) Save(ctx context.Context, snap cache.Snapshot[K, V]) {
	s.metrics.Inc(metrics.StorageSavesTotal)

	data, err := encodeSnapshot(snap)
	if err != nil {
		s.metrics.Inc(metrics.StorageSaveFailuresTotal)
		s.logger.Warn("encode snapshot %q: %v", s.name, err)
		return
	}

	row := snapshotRow{Name: s.name, Data: data, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		s.metrics.Inc(metrics.StorageSaveFailuresTotal)
		s.logger.Warn("save snapshot %q: %v", s.name, err)
	}
}

func (s *SQLite[K, V]) Clear(ctx context.Context) {
	s.metrics.Inc(metrics.StorageClearsTotal)

	err := s.db.WithContext(ctx).Delete(&snapshotRow{}, "name = ?", s.name).Error
	if err != nil {
		s.logger.Warn("clear snapshot %q: %v", s.name, err)
	}
}
