package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Positive(t, cfg.Cache.Capacity)
	assert.True(t, cfg.Cache.SaveOnChange)
	assert.Zero(t, cfg.Cache.DefaultTTL, "entries should not expire unless asked to")

	assert.Equal(t, "memory", cfg.Storage.Backend, "the default backend must not touch disk")
	assert.NotEmpty(t, cfg.Storage.FilePath)
	assert.NotEmpty(t, cfg.Storage.DatabasePath)
	assert.NotEmpty(t, cfg.Storage.SnapshotName)

	assert.Positive(t, cfg.Autosave.Interval)
	assert.NotEmpty(t, cfg.Server.Addr)
}
