package api

import (
	"context"
	"encoding/json"

	"github.com/pulseapp/pulse-go/cms"
)

// Sources combines the data API and the CMS into the query registry's
// remote-fetch contract. Social data comes from the BaaS; the events
// catalogue and stories are editorial content served by the CMS.
type Sources struct {
	*Client
	Content *cms.Client
}

// StoriesList implements query.Sources.
func (s Sources) StoriesList(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return s.Content.StoriesList(ctx, viewerID)
}

// EventsList implements query.Sources.
func (s Sources) EventsList(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return s.Content.EventsList(ctx, viewerID)
}

// EventsHostedAttended implements query.Sources.
func (s Sources) EventsHostedAttended(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return s.Content.EventsHostedAttended(ctx, viewerID)
}

// EventsLiked implements query.Sources.
func (s Sources) EventsLiked(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return s.Content.EventsLiked(ctx, viewerID)
}
