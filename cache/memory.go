package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Memory is the in-process Store used on device. All methods are safe for
// concurrent use; within one process it is the single shared mutable
// resource of the prefetch pipeline.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]Entry

	// now is swappable in tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[Key]Entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (m *Memory) Get(key Key) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

// GetFresh implements Store.
func (m *Memory) GetFresh(key Key, maxAge time.Duration) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}
	if e.Stale {
		return e, false
	}
	if maxAge > 0 && m.now().Sub(e.FetchedAt) > maxAge {
		return e, false
	}
	return e, true
}

// Set implements Store.
func (m *Memory) Set(key Key, value json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{
		Value:     value,
		FetchedAt: m.now(),
		Stale:     false,
	}
}

// MarkStale implements Store. The entry's value survives: staleness never
// implies deletion.
func (m *Memory) MarkStale(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	e.Stale = true
	m.entries[key] = e
}

// Len implements Store.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear implements Store.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[Key]Entry)
}

// Snapshot implements Store.
func (m *Memory) Snapshot() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := json.Marshal(m.entries)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	return data, nil
}

// Restore implements Store.
func (m *Memory) Restore(data []byte) error {
	entries := make(map[Key]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("restore cache: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	return nil
}
