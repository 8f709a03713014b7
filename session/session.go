// Package session tracks the authenticated viewer's identity. The
// accessor is synchronous; consumers that must not run unauthenticated
// (the prefetch scheduler, the resume throttle) check it at call time.
package session

import "sync"

// Identity holds the current viewer id, if any.
type Identity struct {
	mu       sync.RWMutex
	viewerID string
}

// NewIdentity creates an unauthenticated identity.
func NewIdentity() *Identity {
	return &Identity{}
}

// Set records the viewer after authentication (or an account switch).
func (i *Identity) Set(viewerID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.viewerID = viewerID
}

// Clear forgets the viewer on logout.
func (i *Identity) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.viewerID = ""
}

// ViewerID returns the current viewer id and whether one is set.
func (i *Identity) ViewerID() (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.viewerID, i.viewerID != ""
}
