// Package refresh keeps the app feeling live after a resume without
// refetch storms: a throttled, two-tier revalidation pass runs when the
// app returns to the foreground.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/internal/metrics"
	"github.com/pulseapp/pulse-go/lifecycle"
	"github.com/pulseapp/pulse-go/query"
)

// DefaultWindow is the reference throttle window.
const DefaultWindow = 30 * time.Second

// ObserverFunc reports whether any UI is currently observing the named
// query. The throttle uses it to skip time-sensitive refetches no one is
// looking at.
type ObserverFunc func(name string) bool

// The two refresh tiers. Badges and the viewer's own profile are cheap
// and always visible, so they refetch eagerly; the large lists are only
// marked stale and refetch lazily on their next read.
var (
	eagerQueries = []string{query.UnreadMessages, query.NotificationBadges, query.Profile}
	lazyQueries  = []string{query.Feed, query.Events, query.OwnPosts}
)

// Throttle runs the resume-refresh pass at most once per window,
// regardless of how many foreground transitions occur in between.
type Throttle struct {
	store    cache.Store
	reg      *query.Registry
	window   time.Duration
	observed ObserverFunc
	log      zerolog.Logger

	// now is swappable in tests.
	now func() time.Time

	mu            sync.Mutex
	lastRefreshAt time.Time
}

// New creates a throttle. window <= 0 uses DefaultWindow; a nil observer
// means nothing is ever observed.
func New(store cache.Store, reg *query.Registry, window time.Duration, observed ObserverFunc, log zerolog.Logger) *Throttle {
	if window <= 0 {
		window = DefaultWindow
	}
	if observed == nil {
		observed = func(string) bool { return false }
	}
	return &Throttle{
		store:    store,
		reg:      reg,
		window:   window,
		observed: observed,
		log:      log,
		now:      time.Now,
	}
}

// OnTransition is the lifecycle callback. Only a genuine resume — from
// background or inactive to active — is considered; everything else is a
// no-op. The refresh batch runs in the background and the caller returns
// immediately.
func (t *Throttle) OnTransition(ctx context.Context, viewerID string, from, to lifecycle.State) {
	if to != lifecycle.StateActive || from == lifecycle.StateActive {
		metrics.Resume("ignored")
		return
	}
	if viewerID == "" {
		t.log.Debug().Msg("resume refresh skipped, no viewer")
		metrics.Resume("ignored")
		return
	}

	t.mu.Lock()
	elapsed := t.now().Sub(t.lastRefreshAt)
	if elapsed < t.window {
		t.mu.Unlock()
		metrics.Resume("throttled")
		t.log.Debug().
			Dur("elapsed", elapsed).
			Dur("window", t.window).
			Msg("resume refresh throttled")
		return
	}
	t.lastRefreshAt = t.now()
	t.mu.Unlock()

	metrics.Resume("fired")
	t.log.Info().Str("viewer", viewerID).Msg("resume refresh firing")

	// Large lists: mark stale, let the next screen visit refetch lazily.
	for _, name := range lazyQueries {
		t.store.MarkStale(query.KeyFor(name, viewerID))
	}

	// Badges and profile: numbers are visible right now, refetch eagerly.
	for _, name := range eagerQueries {
		go t.refetch(ctx, viewerID, name)
	}

	// Activity is time-sensitive but wasteful to fetch unwatched.
	if t.observed(query.RecentActivity) {
		go t.refetch(ctx, viewerID, query.RecentActivity)
	}
}

// refetch runs one best-effort fetch, writing only on success. A failure
// is logged and affects nothing else.
func (t *Throttle) refetch(ctx context.Context, viewerID, name string) {
	d, ok := t.reg.Get(name)
	if !ok {
		t.log.Warn().Str("query", name).Msg("resume refresh query not registered")
		return
	}
	value, err := d.FetchFor(viewerID)(ctx)
	if err != nil {
		t.log.Warn().Err(err).Str("query", name).Msg("resume refetch failed")
		return
	}
	t.store.Set(d.KeyFor(viewerID), value)
}
