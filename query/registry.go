package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pulseapp/pulse-go/cache"
)

// Registry holds the app's query descriptors, indexed by name and grouped
// by lane. It is built once at startup and never mutated afterwards.
type Registry struct {
	byName map[string]Descriptor
	lanes  [NumLanes][]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds a descriptor. Later registrations replace earlier ones of
// the same name; callers are expected to register each query once.
func (r *Registry) Register(d Descriptor) {
	if prev, ok := r.byName[d.Name]; ok {
		lane := r.lanes[prev.Lane]
		for i := range lane {
			if lane[i].Name == d.Name {
				r.lanes[prev.Lane] = append(lane[:i], lane[i+1:]...)
				break
			}
		}
	}
	r.byName[d.Name] = d
	r.lanes[d.Lane] = append(r.lanes[d.Lane], d)
}

// Get retrieves a descriptor by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Lane returns the descriptors of one lane in registration order.
func (r *Registry) Lane(lane Lane) []Descriptor {
	return r.lanes[lane]
}

// Names returns all registered query names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// simpleKey adapts a no-param query to the KeyFor signature.
func simpleKey(name string) func(string, ...string) cache.Key {
	return func(viewerID string, _ ...string) cache.Key {
		return KeyFor(name, viewerID)
	}
}

// simpleFetch adapts a (ctx, viewer) source method to the FetchFor signature.
func simpleFetch(fn func(ctx context.Context, viewerID string) (json.RawMessage, error)) func(string, ...string) FetchFunc {
	return func(viewerID string, _ ...string) FetchFunc {
		return func(ctx context.Context) (json.RawMessage, error) {
			return fn(ctx, viewerID)
		}
	}
}

// Build assembles the full registry against the given sources. The lane
// assignments encode the boot priority policy: above-the-fold content
// first, tab-bar badges next, adjacent tabs, then everything else, with
// per-conversation message history derived from the conversation list.
func Build(src Sources) *Registry {
	r := NewRegistry()

	// Lane 0: what the user is already looking at.
	r.Register(Descriptor{
		Name: Feed, Lane: LaneAboveTheFold, StaleBudget: 2 * time.Minute,
		KeyFor: simpleKey(Feed),
		FetchFor: func(viewerID string, _ ...string) FetchFunc {
			return func(ctx context.Context) (json.RawMessage, error) {
				return src.FeedPage(ctx, viewerID, 1)
			}
		},
	})
	r.Register(Descriptor{
		Name: Profile, Lane: LaneAboveTheFold, StaleBudget: 5 * time.Minute,
		KeyFor: simpleKey(Profile), FetchFor: simpleFetch(src.OwnProfile),
	})
	r.Register(Descriptor{
		Name: Stories, Lane: LaneAboveTheFold, StaleBudget: time.Minute,
		KeyFor: simpleKey(Stories), FetchFor: simpleFetch(src.StoriesList),
	})

	// Lane 1: tab-bar badges.
	r.Register(Descriptor{
		Name: UnreadMessages, Lane: LaneBadges, StaleBudget: 30 * time.Second,
		KeyFor: simpleKey(UnreadMessages), FetchFor: simpleFetch(src.UnreadCounts),
	})
	r.Register(Descriptor{
		Name: NotificationBadges, Lane: LaneBadges, StaleBudget: 30 * time.Second,
		KeyFor: simpleKey(NotificationBadges), FetchFor: simpleFetch(src.NotificationBadges),
	})

	// Lane 2: adjacent tabs.
	r.Register(Descriptor{
		Name: Conversations, Lane: LaneAdjacent, StaleBudget: time.Minute,
		KeyFor: simpleKey(Conversations), FetchFor: simpleFetch(src.Conversations),
	})
	r.Register(Descriptor{
		Name: RecentActivity, Lane: LaneAdjacent, StaleBudget: time.Minute,
		KeyFor: simpleKey(RecentActivity), FetchFor: simpleFetch(src.RecentActivity),
	})
	r.Register(Descriptor{
		Name: InboxFiltered, Lane: LaneAdjacent, StaleBudget: 2 * time.Minute,
		KeyFor: simpleKey(InboxFiltered), FetchFor: simpleFetch(src.FilteredInbox),
	})

	// Lane 3: secondary tabs.
	r.Register(Descriptor{
		Name: OwnPosts, Lane: LaneSecondary, StaleBudget: 5 * time.Minute,
		KeyFor: simpleKey(OwnPosts), FetchFor: simpleFetch(src.OwnPosts),
	})
	r.Register(Descriptor{
		Name: Bookmarks, Lane: LaneSecondary, StaleBudget: 5 * time.Minute,
		KeyFor: simpleKey(Bookmarks), FetchFor: simpleFetch(src.Bookmarks),
	})
	r.Register(Descriptor{
		Name: Events, Lane: LaneSecondary, StaleBudget: 5 * time.Minute,
		KeyFor: simpleKey(Events), FetchFor: simpleFetch(src.EventsList),
	})
	r.Register(Descriptor{
		Name: Notifications, Lane: LaneSecondary, StaleBudget: time.Minute,
		KeyFor: simpleKey(Notifications), FetchFor: simpleFetch(src.Notifications),
	})
	r.Register(Descriptor{
		Name: EventsMine, Lane: LaneSecondary, StaleBudget: 10 * time.Minute,
		KeyFor: simpleKey(EventsMine), FetchFor: simpleFetch(src.EventsHostedAttended),
	})
	r.Register(Descriptor{
		Name: EventsLiked, Lane: LaneSecondary, StaleBudget: 10 * time.Minute,
		KeyFor: simpleKey(EventsLiked), FetchFor: simpleFetch(src.EventsLiked),
	})

	// Lane 4: derived from lane 2's conversation list at fire time.
	r.Register(Descriptor{
		Name: Messages, Lane: LaneDerived, StaleBudget: time.Minute,
		KeyFor: func(viewerID string, params ...string) cache.Key {
			conversationID := ""
			if len(params) > 0 {
				conversationID = params[0]
			}
			return MessagesKey(viewerID, conversationID)
		},
		FetchFor: func(viewerID string, params ...string) FetchFunc {
			conversationID := ""
			if len(params) > 0 {
				conversationID = params[0]
			}
			return func(ctx context.Context) (json.RawMessage, error) {
				return src.MessageHistory(ctx, viewerID, conversationID)
			}
		},
	})

	return r
}
