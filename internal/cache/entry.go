package cache

import "time"

// Entry is a single cached item together with its expiry and recency
// bookkeeping. It is exported because storage adapters persist entries
// verbatim.
//
// ExpiresAt is a pointer so that "never expires" survives a JSON round
// trip as null instead of the zero time.
type Entry[V any] struct {
	Value        V          `json:"value"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	LastAccessed time.Time  `json:"lastAccessed"`
}

// Expired reports whether the entry is past its expiry at the given time.
// Entries without an expiry never expire.
func (e Entry[V]) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
