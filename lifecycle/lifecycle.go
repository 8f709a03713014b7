// Package lifecycle delivers app foreground/background transitions to
// subscribers. The host app (or platform shim) calls Set as the process
// moves between states.
package lifecycle

import "sync"

// State is the app's process state.
type State int

const (
	// StateActive means the app is foregrounded and interactive.
	StateActive State = iota
	// StateInactive means the app is transitioning or interrupted.
	StateInactive
	// StateBackground means the app is backgrounded.
	StateBackground
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateBackground:
		return "background"
	default:
		return "unknown"
	}
}

// Handler receives a state transition.
type Handler func(from, to State)

// Watcher fans state transitions out to subscribers. Delivery is
// serialized: handlers for one transition finish before the next
// transition is delivered.
type Watcher struct {
	mu       sync.Mutex
	state    State
	handlers []Handler
}

// NewWatcher creates a watcher starting in StateActive.
func NewWatcher() *Watcher {
	return &Watcher{state: StateActive}
}

// Subscribe registers a handler for future transitions.
func (w *Watcher) Subscribe(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// State returns the current state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Set transitions to the given state, notifying subscribers. Setting the
// current state again is a no-op.
func (w *Watcher) Set(to State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	from := w.state
	if from == to {
		return
	}
	w.state = to
	for _, h := range w.handlers {
		h(from, to)
	}
}
