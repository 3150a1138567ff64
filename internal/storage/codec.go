// Package storage provides the persistence adapters the cache consumes:
// a no-op in-memory adapter, a JSON file adapter and a SQLite-backed
// adapter. All of them fail closed: unreadable state loads as empty and
// failed writes are dropped after logging.
package storage

import (
	"encoding/json"

	"bounded-cache/internal/cache"
)

// pair is one persisted key/entry couple. Snapshots are stored as an
// ordered pair list rather than a JSON object because the key type is
// not necessarily a string.
type pair[K comparable, V any] struct {
	Key   K              `json:"key"`
	Entry cache.Entry[V] `json:"entry"`
}

func encodeSnapshot[K comparable, V any](snap cache.Snapshot[K, V]) ([]byte, error) {
	pairs := make([]pair[K, V], 0, len(snap))
	for k, e := range snap {
		pairs = append(pairs, pair[K, V]{Key: k, Entry: e})
	}
	return json.Marshal(pairs)
}

func decodeSnapshot[K comparable, V any](data []byte) (cache.Snapshot[K, V], error) {
	var pairs []pair[K, V]
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}

	snap := make(cache.Snapshot[K, V], len(pairs))
	for _, p := range pairs {
		snap[p.Key] = p.Entry
	}
	return snap, nil
}
