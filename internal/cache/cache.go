package cache

import (
	"container/list"
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"bounded-cache/internal/metrics"
)

// Config controls capacity, default expiry and persistence behavior.
type Config struct {
	// Capacity is the maximum number of entries. Non-positive values are
	// treated as 1; a capacity of one is valid and means every insert of
	// a new key evicts the sole existing one.
	Capacity int

	// DefaultTTL applies to writes without an explicit TTL. Zero means
	// such entries never expire.
	DefaultTTL time.Duration

	// SaveOnChange makes every state-changing operation snapshot to the
	// storage adapter before returning. When false, persistence only
	// happens through Save (manual or via the autosaver).
	SaveOnChange bool
}

// node is what the recency list elements carry. The key lives here
// because eviction starts from list nodes.
type node[K comparable, V any] struct {
	key   K
	entry Entry[V]
}

// Cache is a bounded key–value cache with per-entry TTL, least-recently-
// used eviction and pluggable persistence.
//
// Design:
//   - map + doubly-linked list give O(1) lookup and O(1) recency updates;
//     the map and list always hold exactly the same key set
//   - expiry is lazy: only Get and Has remove expired entries, so Size
//     and Keys may transiently count entries past their TTL
//   - the persisted snapshot hydrates lazily on first use, at most once,
//     even under concurrent first callers
//
// All methods are safe for concurrent use. None of them return errors:
// missing and expired keys degrade to "not found", and storage failures
// are neutralized inside the adapters.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	cfg     Config
	items   map[K]*list.Element
	recency *list.List // front = most recently used, back = next eviction target

	storage Adapter[K, V]
	metrics *metrics.Registry

	loaded  atomic.Bool
	loading singleflight.Group
}

// New creates an empty cache backed by the given storage adapter. The
// persisted snapshot, if any, is not read until the first operation.
func New[K comparable, V any](cfg Config, storage Adapter[K, V], reg *metrics.Registry) *Cache[K, V] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Cache[K, V]{
		cfg:     cfg,
		items:   make(map[K]*list.Element),
		recency: list.New(),
		storage: storage,
		metrics: reg,
	}
}

// ensureLoaded hydrates from storage before the first observable
// operation. Concurrent first callers share a single in-flight load
// instead of each triggering their own.
func (c *Cache[K, V]) ensureLoaded(ctx context.Context) {
	if c.loaded.Load() {
		return
	}

	c.loading.Do("hydrate", func() (any, error) {
		if c.loaded.Load() {
			return nil, nil
		}
		c.hydrate(ctx)
		c.loaded.Store(true)
		return nil, nil
	})
}

func (c *Cache[K, V]) hydrate(ctx context.Context) {
	persisted := c.storage.Load(ctx)
	now := time.Now()

	type keyed struct {
		key   K
		entry Entry[V]
	}

	survivors := make([]keyed, 0, len(persisted))
	for k, e := range persisted {
		if e.Expired(now) {
			continue
		}
		survivors = append(survivors, keyed{key: k, entry: e})
	}

	// Oldest access first, so after pushing each to the front the back of
	// the list holds the correct next eviction target.
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].entry.LastAccessed.Before(survivors[j].entry.LastAccessed)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range survivors {
		el := c.recency.PushFront(&node[K, V]{key: s.key, entry: s.entry})
		c.items[s.key] = el
	}
	c.metrics.Add(metrics.CacheKeysTotal, int64(len(survivors)))
}

// Get returns the value stored under key.
//
// A hit refreshes the entry's recency and last-accessed instant, so reads
// influence eviction order. An expired entry is removed and reported as
// missing.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	c.ensureLoaded(ctx)
	c.metrics.Inc(metrics.CacheGetsTotal)

	var zero V

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.metrics.Inc(metrics.CacheMissesTotal)
		return zero, false
	}

	n := el.Value.(*node[K, V])
	now := time.Now()
	if n.entry.Expired(now) {
		c.removeLocked(key, el)
		c.mu.Unlock()
		c.metrics.Inc(metrics.CacheExpiredTotal)
		c.metrics.Inc(metrics.CacheMissesTotal)
		c.saveOnChange(ctx)
		return zero, false
	}

	n.entry.LastAccessed = now
	c.recency.MoveToFront(el)
	value := n.entry.Value
	c.mu.Unlock()

	c.metrics.Inc(metrics.CacheHitsTotal)
	c.saveOnChange(ctx)
	return value, true
}

// Set stores value under key using the cache-wide default TTL.
func (c *Cache[K, V]) Set(ctx context.Context, key K, value V) {
	c.SetWithTTL(ctx, key, value, c.cfg.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL, overriding the
// default. A non-positive ttl means the entry never expires.
//
// Overwriting an existing key refreshes its value, expiry and recency
// without counting against capacity. Inserting a new key at capacity
// evicts from the least-recently-used end first.
func (c *Cache[K, V]) SetWithTTL(ctx context.Context, key K, value V, ttl time.Duration) {
	c.ensureLoaded(ctx)
	c.metrics.Inc(metrics.CacheSetsTotal)

	now := time.Now()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		n := el.Value.(*node[K, V])
		n.entry = Entry[V]{Value: value, ExpiresAt: expiresAt, LastAccessed: now}
		c.recency.MoveToFront(el)
		c.mu.Unlock()
		c.saveOnChange(ctx)
		return
	}

	// Evict from the cold end until there is room. Remaining TTL is not
	// consulted: least recently used is sufficient grounds for removal.
	for len(c.items) >= c.cfg.Capacity {
		back := c.recency.Back()
		if back == nil {
			break
		}
		evicted := back.Value.(*node[K, V])
		c.removeLocked(evicted.key, back)
		c.metrics.Inc(metrics.CacheEvictionsTotal)
	}

	el := c.recency.PushFront(&node[K, V]{
		key:   key,
		entry: Entry[V]{Value: value, ExpiresAt: expiresAt, LastAccessed: now},
	})
	c.items[key] = el
	c.metrics.Add(metrics.CacheKeysTotal, 1)
	c.mu.Unlock()

	c.saveOnChange(ctx)
}

// Delete removes key if present. Deleting an absent key is a no-op and
// does not trigger a save.
func (c *Cache[K, V]) Delete(ctx context.Context, key K) {
	c.ensureLoaded(ctx)

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.removeLocked(key, el)
	c.mu.Unlock()

	c.metrics.Inc(metrics.CacheDeletesTotal)
	c.saveOnChange(ctx)
}

// Has reports whether key holds a live entry. Unlike Get it does not
// refresh recency, but an expired entry found here is removed the same
// way.
func (c *Cache[K, V]) Has(ctx context.Context, key K) bool {
	c.ensureLoaded(ctx)

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if el.Value.(*node[K, V]).entry.Expired(time.Now()) {
		c.removeLocked(key, el)
		c.mu.Unlock()
		c.metrics.Inc(metrics.CacheExpiredTotal)
		c.saveOnChange(ctx)
		return false
	}
	c.mu.Unlock()
	return true
}

// Clear empties the cache and erases all persisted state. Erasure is a
// distinct adapter operation, not a save of an empty snapshot, and it
// happens regardless of the SaveOnChange setting.
func (c *Cache[K, V]) Clear(ctx context.Context) {
	c.ensureLoaded(ctx)

	c.mu.Lock()
	removed := len(c.items)
	c.items = make(map[K]*list.Element)
	c.recency.Init()
	c.mu.Unlock()

	c.metrics.Add(metrics.CacheKeysTotal, -int64(removed))
	c.storage.Clear(ctx)
}

// Size returns the number of stored entries. Entries past their TTL that
// no access has purged yet are still counted; only Get and Has expire.
func (c *Cache[K, V]) Size(ctx context.Context) int {
	c.ensureLoaded(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns all stored keys ordered most to least recently used, with
// the same staleness caveat as Size.
func (c *Cache[K, V]) Keys(ctx context.Context) []K {
	c.ensureLoaded(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, c.recency.Len())
	for el := c.recency.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*node[K, V]).key)
	}
	return out
}

// Save writes the full snapshot through the adapter regardless of the
// SaveOnChange setting. This is the manual persistence path.
func (c *Cache[K, V]) Save(ctx context.Context) {
	c.ensureLoaded(ctx)
	c.storage.Save(ctx, c.snapshot())
}

func (c *Cache[K, V]) saveOnChange(ctx context.Context) {
	if !c.cfg.SaveOnChange {
		return
	}
	c.storage.Save(ctx, c.snapshot())
}

func (c *Cache[K, V]) snapshot() Snapshot[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := make(Snapshot[K, V], len(c.items))
	for k, el := range c.items {
		snap[k] = el.Value.(*node[K, V]).entry
	}
	return snap
}

func (c *Cache[K, V]) removeLocked(key K, el *list.Element) {
	delete(c.items, key)
	c.recency.Remove(el)
	c.metrics.Add(metrics.CacheKeysTotal, -1)
}
