package prefetch

import (
	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/query"
)

// Status classifies the cache at boot. It drives log phrasing and
// telemetry only; lanes always fire, because a "full" cache is refreshed
// in place rather than skipped so it can never stale forever.
type Status int

const (
	// StatusEmpty means no probe hit: first-ever boot.
	StatusEmpty Status = iota
	// StatusPartial means some probes hit.
	StatusPartial
	// StatusFull means enough probes hit that the user perceives no loading.
	StatusFull
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusPartial:
		return "partial"
	case StatusFull:
		return "full"
	default:
		return "unknown"
	}
}

// probeQueries is the fixed probe set: one per above-the-fold query area.
// It must keep covering every lane 0/1 entry point as the registry grows.
var probeQueries = []string{
	query.Feed,
	query.Profile,
	query.UnreadMessages,
	query.Events,
	query.OwnPosts,
	query.RecentActivity,
	query.Stories,
}

// DetectStatus counts how many probe keys resolve to a present entry,
// stale or not. Full needs all but one probe present (6 of 7). No side
// effects.
func DetectStatus(store cache.Store, viewerID string) Status {
	hits := 0
	for _, name := range probeQueries {
		if _, ok := store.Get(query.KeyFor(name, viewerID)); ok {
			hits++
		}
	}
	switch {
	case hits == 0:
		return StatusEmpty
	case hits >= len(probeQueries)-1:
		return StatusFull
	default:
		return StatusPartial
	}
}
