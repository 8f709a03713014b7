package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()

	_, ok := m.Get("feed:v1")
	assert.False(t, ok, "empty store should miss")

	m.Set("feed:v1", json.RawMessage(`{"posts":[1,2,3]}`))

	e, ok := m.Get("feed:v1")
	require.True(t, ok)
	assert.JSONEq(t, `{"posts":[1,2,3]}`, string(e.Value))
	assert.False(t, e.Stale)
	assert.False(t, e.FetchedAt.IsZero())
}

func TestMemory_MarkStaleRetainsValue(t *testing.T) {
	m := NewMemory()
	m.Set("profile:u1", json.RawMessage(`{"name":"ada"}`))

	m.MarkStale("profile:u1")

	e, ok := m.Get("profile:u1")
	require.True(t, ok, "stale entry must remain present")
	assert.True(t, e.Stale)
	assert.JSONEq(t, `{"name":"ada"}`, string(e.Value), "staleness must not clear the value")
}

func TestMemory_MarkStaleUnknownKey(t *testing.T) {
	m := NewMemory()
	m.MarkStale("nope")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_SetClearsStale(t *testing.T) {
	m := NewMemory()
	m.Set("badges:u1", json.RawMessage(`{"unread":3}`))
	m.MarkStale("badges:u1")

	m.Set("badges:u1", json.RawMessage(`{"unread":0}`))

	e, ok := m.GetFresh("badges:u1", time.Minute)
	require.True(t, ok, "a successful refetch should make the entry fresh again")
	assert.JSONEq(t, `{"unread":0}`, string(e.Value))
}

func TestMemory_GetFresh(t *testing.T) {
	m := NewMemory()
	base := time.Now()
	m.now = func() time.Time { return base }
	m.Set("feed:u1", json.RawMessage(`[]`))

	_, ok := m.GetFresh("feed:u1", time.Minute)
	assert.True(t, ok)

	// Past the staleness budget the entry still exists but is not fresh.
	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	e, ok := m.GetFresh("feed:u1", time.Minute)
	assert.False(t, ok)
	assert.NotNil(t, e.Value, "aged-out entry is still returned for render-while-refetch")

	// Explicit invalidation also defeats freshness.
	m.now = func() time.Time { return base }
	m.MarkStale("feed:u1")
	_, ok = m.GetFresh("feed:u1", time.Minute)
	assert.False(t, ok)
}

func TestMemory_SnapshotRestore(t *testing.T) {
	m := NewMemory()
	m.Set("feed:u1", json.RawMessage(`{"page":1}`))
	m.Set("profile:u1", json.RawMessage(`{"name":"ada"}`))
	m.MarkStale("profile:u1")

	data, err := m.Snapshot()
	require.NoError(t, err)

	restored := NewMemory()
	require.NoError(t, restored.Restore(data))

	assert.Equal(t, 2, restored.Len())
	e, ok := restored.Get("profile:u1")
	require.True(t, ok)
	assert.True(t, e.Stale, "staleness survives a restart")
	assert.JSONEq(t, `{"name":"ada"}`, string(e.Value))
}

func TestMemory_RestoreRejectsGarbage(t *testing.T) {
	m := NewMemory()
	m.Set("feed:u1", json.RawMessage(`{}`))
	err := m.Restore([]byte("not json"))
	assert.Error(t, err)
	assert.Equal(t, 1, m.Len(), "failed restore leaves contents untouched")
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory()
	m.Set("a", json.RawMessage(`1`))
	m.Set("b", json.RawMessage(`2`))
	m.Clear()
	assert.Equal(t, 0, m.Len())
}
