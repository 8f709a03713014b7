package cache

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "snapshot.json")
	s, err := NewSnapshotter(path)
	require.NoError(t, err)

	m := NewMemory()
	m.Set("feed:u1", json.RawMessage(`{"page":1}`))
	require.NoError(t, s.SaveFrom(m))

	restored := NewMemory()
	require.NoError(t, s.RestoreInto(restored))
	e, ok := restored.Get("feed:u1")
	require.True(t, ok)
	assert.JSONEq(t, `{"page":1}`, string(e.Value))
}

func TestSnapshotter_MissingFileIsFirstBoot(t *testing.T) {
	s, err := NewSnapshotter(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)

	data, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, data)

	m := NewMemory()
	require.NoError(t, s.RestoreInto(m))
	assert.Equal(t, 0, m.Len())
}

func TestSnapshotter_EmptyPath(t *testing.T) {
	_, err := NewSnapshotter("")
	assert.Error(t, err)
}
