// Package cache provides the shared client-side query cache: a key→entry
// store with explicit staleness, plus snapshot/restore so the cache
// survives app restarts.
package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by helpers when a cache entry is absent.
var ErrNotFound = errors.New("cache entry not found")

// Key identifies one cached query result. Keys are viewer-scoped by
// construction (see package query); the store itself knows nothing about
// identity.
type Key string

// Entry is the stored result for one key. A stale entry keeps its last
// good value so callers can render it while a refetch is pending.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
}

// Fresh reports whether the entry is usable without a refetch: not
// explicitly invalidated and fetched within maxAge. maxAge <= 0 disables
// the age check.
func (e Entry) Fresh(maxAge time.Duration) bool {
	if e.Stale {
		return false
	}
	if maxAge > 0 && time.Since(e.FetchedAt) > maxAge {
		return false
	}
	return true
}

// Store is the cache contract the prefetch scheduler and resume throttle
// write through. Writes happen only on successful fetches; invalidation
// marks entries stale without deleting them; nothing but Clear evicts.
type Store interface {
	// Get returns the entry for key, stale or not.
	Get(key Key) (Entry, bool)

	// GetFresh returns the entry only if it is present and Fresh(maxAge).
	GetFresh(key Key, maxAge time.Duration) (Entry, bool)

	// Set overwrites the entry wholesale, stamps FetchedAt and clears Stale.
	Set(key Key, value json.RawMessage)

	// MarkStale flags the entry for lazy refetch, retaining its value.
	// Unknown keys are ignored.
	MarkStale(key Key)

	// Len returns the number of stored entries.
	Len() int

	// Clear evicts everything (logout / reinstall).
	Clear()

	// Snapshot serializes the store for persistence across restarts.
	Snapshot() ([]byte, error)

	// Restore bulk-loads entries from a previous Snapshot, replacing the
	// current contents.
	Restore(data []byte) error
}
