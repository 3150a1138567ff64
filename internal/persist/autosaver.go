package persist

import (
	"context"
	"time"

	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

// Saver is the minimal contract the autosaver needs from the cache.
// Keeping it an interface decouples the loop from the concrete cache type.
type Saver interface {
	Save(ctx context.Context)
}

// Autosaver periodically snapshots the cache through its storage adapter.
// It exists for manual-persistence mode, where mutations do not save on
// their own.
type Autosaver struct {
	cache    Saver
	interval time.Duration
	logger   *logs.Logger
	metrics  *metrics.Registry
}

// NewAutosaver creates a new autosaver.
func NewAutosaver(
	cache Saver,
	interval time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Autosaver {
	return &Autosaver{
		cache:    cache,
		interval: interval,
		logger:   logger,
		metrics:  reg,
	}
}

// Start runs the save loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (a *Autosaver) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runOnce(ctx)
		case <-ctx.Done():
			a.logger.Debug("autosaver stopped")
			return
		}
	}
}

// runOnce performs a single snapshot save.
func (a *Autosaver) runOnce(ctx context.Context) {
	a.cache.Save(ctx)
	a.metrics.Inc(metrics.AutosaveRunsTotal)
}
