package query

import (
	"strings"

	"github.com/pulseapp/pulse-go/cache"
)

// keyVersion namespaces every cache key so a layout change never reads an
// older app version's entries.
const keyVersion = "v1"

// KeyFor derives the cache key for a named query scoped to a viewer.
// Identical inputs always produce the same key; different viewers can
// never collide because the viewer id is a distinct segment.
func KeyFor(name, viewerID string, params ...string) cache.Key {
	parts := make([]string, 0, 3+len(params))
	parts = append(parts, keyVersion, name, viewerID)
	parts = append(parts, params...)
	return cache.Key(strings.Join(parts, ":"))
}

// MessagesKey is the parameterized key for one conversation's history.
func MessagesKey(viewerID, conversationID string) cache.Key {
	return KeyFor(Messages, viewerID, conversationID)
}
