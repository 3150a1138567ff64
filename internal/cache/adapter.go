package cache

import "context"

// Snapshot is the full persisted state of a cache: every stored entry
// keyed by its cache key.
type Snapshot[K comparable, V any] map[K]Entry[V]

// Adapter is the persistence contract the cache consumes. Implementations
// live in internal/storage; the cache never inspects how a snapshot is
// stored.
//
// Adapters fail closed: Load returns an empty snapshot on any problem,
// and Save/Clear swallow failures. In-memory correctness never depends on
// persistence succeeding.
type Adapter[K comparable, V any] interface {
	// Load returns the last persisted snapshot, or an empty one if none
	// exists or it cannot be read.
	Load(ctx context.Context) Snapshot[K, V]

	// Save persists the full snapshot, replacing any prior one.
	Save(ctx context.Context, snap Snapshot[K, V])

	// Clear erases all persisted state for this adapter's backing store.
	Clear(ctx context.Context)
}
