// Package query defines the fixed registry of remote queries the app
// depends on: each entry's cache key derivation, fetch function, staleness
// budget and prefetch lane.
package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pulseapp/pulse-go/cache"
)

// Lane is a priority tier for boot prefetch. Lower lanes fire earlier.
type Lane int

const (
	// LaneAboveTheFold covers what the user sees immediately after boot.
	LaneAboveTheFold Lane = iota
	// LaneBadges covers unread counters shown in the tab bar.
	LaneBadges
	// LaneAdjacent covers tabs one swipe away.
	LaneAdjacent
	// LaneSecondary covers everything reachable but not imminent.
	LaneSecondary
	// LaneDerived covers prefetches computed from earlier lanes' results.
	LaneDerived

	// NumLanes is the count of scheduling lanes.
	NumLanes = 5
)

// Query names. These are the registry's stable identifiers; cache keys are
// derived from them (see keys.go).
const (
	Feed               = "feed"
	Profile            = "profile"
	Stories            = "stories"
	UnreadMessages     = "unread-messages"
	NotificationBadges = "notification-badges"
	Conversations      = "conversations"
	RecentActivity     = "recent-activity"
	InboxFiltered      = "inbox-filtered"
	OwnPosts           = "own-posts"
	Bookmarks          = "bookmarks"
	Events             = "events"
	Notifications      = "notifications"
	EventsMine         = "events-mine"
	EventsLiked        = "events-liked"
	Messages           = "messages"
)

// FetchFunc is the uniform shape of a remote fetch: opaque payload or
// error, nothing in between. The core never inspects the payload.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Descriptor is one registry entry. Descriptors are static after the
// registry is built; KeyFor and FetchFor are pure in viewer identity and
// params so identical inputs always address the same cache entry.
type Descriptor struct {
	Name        string
	Lane        Lane
	StaleBudget time.Duration

	// KeyFor derives the viewer-scoped cache key. Params carry query
	// parameters such as a conversation id.
	KeyFor func(viewerID string, params ...string) cache.Key

	// FetchFor binds the remote fetch to a viewer and params.
	FetchFor func(viewerID string, params ...string) FetchFunc
}

// Sources is the remote-data collaborator contract the registry binds
// fetches to. Implementations may speak REST, RPC or query a database
// directly; the registry does not care.
type Sources interface {
	FeedPage(ctx context.Context, viewerID string, page int) (json.RawMessage, error)
	OwnProfile(ctx context.Context, viewerID string) (json.RawMessage, error)
	StoriesList(ctx context.Context, viewerID string) (json.RawMessage, error)
	UnreadCounts(ctx context.Context, viewerID string) (json.RawMessage, error)
	NotificationBadges(ctx context.Context, viewerID string) (json.RawMessage, error)
	Conversations(ctx context.Context, viewerID string) (json.RawMessage, error)
	RecentActivity(ctx context.Context, viewerID string) (json.RawMessage, error)
	FilteredInbox(ctx context.Context, viewerID string) (json.RawMessage, error)
	OwnPosts(ctx context.Context, viewerID string) (json.RawMessage, error)
	Bookmarks(ctx context.Context, viewerID string) (json.RawMessage, error)
	EventsList(ctx context.Context, viewerID string) (json.RawMessage, error)
	Notifications(ctx context.Context, viewerID string) (json.RawMessage, error)
	EventsHostedAttended(ctx context.Context, viewerID string) (json.RawMessage, error)
	EventsLiked(ctx context.Context, viewerID string) (json.RawMessage, error)
	MessageHistory(ctx context.Context, viewerID, conversationID string) (json.RawMessage, error)
}
