package storage

import (
	"context"

	"bounded-cache/internal/cache"
)

// Memory is the no-op adapter: nothing is ever persisted, so a cache
// built on it is purely in-memory. It exists so callers never have to
// nil-check their adapter.
type Memory[K comparable, V any] struct{}

func NewMemory[K comparable, V any]() Memory[K, V] {
	return Memory[K, V]{}
}

func (Memory[K, V]) Load(context.Context) cache.Snapshot[K, V] {
	return cache.Snapshot[K, V]{}
}

func (Memory[K, V]) Save(context.Context, cache.Snapshot[K, V]) {}

func (Memory[K, V]) Clear(context.Context) {}
