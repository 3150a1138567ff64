package persist

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

/* ---------------- Mock Saver ---------------- */

type mockSaver struct {
	saves int32
}

func (m *mockSaver) Save(ctx context.Context) {
	atomic.AddInt32(&m.saves, 1)
}

/* ---------------- Tests ---------------- */

func TestAutosaver_RunOnce_SavesAndUpdatesMetrics(t *testing.T) {
	saver := &mockSaver{}
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	autosaver := NewAutosaver(saver, time.Second, logger, reg)

	autosaver.runOnce(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&saver.saves))

	snap := reg.Snapshot()
	assert.Equal(t, int64(1), snap[string(metrics.AutosaveRunsTotal)])
}

func TestAutosaver_Start_SavesPeriodically(t *testing.T) {
	saver := &mockSaver{}
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	autosaver := NewAutosaver(saver, 5*time.Millisecond, logger, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go autosaver.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&saver.saves) >= 2
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestAutosaver_Start_StopsOnContextCancel(t *testing.T) {
	saver := &mockSaver{}
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	autosaver := NewAutosaver(saver, 5*time.Millisecond, logger, reg)

	ctx, cancel := context.WithCancel(context.Background())
	go autosaver.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	savesAtCancel := atomic.LoadInt32(&saver.saves)

	time.Sleep(30 * time.Millisecond)
	savesAfter := atomic.LoadInt32(&saver.saves)

	// Allow at most one extra tick due to race with the ticker
	assert.LessOrEqual(t, savesAfter, savesAtCancel+1)
}
