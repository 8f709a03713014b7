package prefetch

import (
	"encoding/json"
	"testing"

	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/query"
)

func TestDetectStatus(t *testing.T) {
	const viewer = "viewer-1"

	seed := func(names ...string) cache.Store {
		store := cache.NewMemory()
		for _, name := range names {
			store.Set(query.KeyFor(name, viewer), json.RawMessage(`{}`))
		}
		return store
	}

	tests := []struct {
		name    string
		present []string
		want    Status
	}{
		{"empty store", nil, StatusEmpty},
		{"single probe", []string{query.Feed}, StatusPartial},
		{"half the probes", []string{query.Feed, query.Profile, query.Stories}, StatusPartial},
		{"all but one probe", []string{
			query.Feed, query.Profile, query.UnreadMessages,
			query.Events, query.OwnPosts, query.RecentActivity,
		}, StatusFull},
		{"every probe", probeQueries, StatusFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectStatus(seed(tt.present...), viewer)
			if got != tt.want {
				t.Errorf("DetectStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectStatus_StaleEntriesStillCount(t *testing.T) {
	store := cache.NewMemory()
	for _, name := range probeQueries {
		key := query.KeyFor(name, "viewer-1")
		store.Set(key, json.RawMessage(`{}`))
		store.MarkStale(key)
	}
	if got := DetectStatus(store, "viewer-1"); got != StatusFull {
		t.Errorf("DetectStatus = %s, want %s (stale entries are still hits)", got, StatusFull)
	}
}

func TestDetectStatus_OtherViewerDoesNotCount(t *testing.T) {
	store := cache.NewMemory()
	for _, name := range probeQueries {
		store.Set(query.KeyFor(name, "viewer-a"), json.RawMessage(`{}`))
	}
	if got := DetectStatus(store, "viewer-b"); got != StatusEmpty {
		t.Errorf("DetectStatus = %s, want %s", got, StatusEmpty)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusEmpty:   "empty",
		StatusPartial: "partial",
		StatusFull:    "full",
		Status(99):    "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
