package prefetch

import "sync/atomic"

// Guard is the safe-mode check consulted once per boot dispatch. When it
// reports enabled, the scheduler fires nothing: no fetches, no cache
// writes. This is the escape valve for crash loops caused by a bad
// startup query.
type Guard interface {
	Enabled() bool
}

// Flag is the default Guard: a process-wide switch the host app can flip
// from remote config without shipping a new build.
type Flag struct {
	enabled atomic.Bool
}

// NewFlag creates a guard with the given initial state.
func NewFlag(enabled bool) *Flag {
	f := &Flag{}
	f.enabled.Store(enabled)
	return f
}

// Enable turns safe mode on.
func (f *Flag) Enable() { f.enabled.Store(true) }

// Disable turns safe mode off.
func (f *Flag) Disable() { f.enabled.Store(false) }

// Enabled implements Guard.
func (f *Flag) Enabled() bool { return f.enabled.Load() }
