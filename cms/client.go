// Package cms is the client for the headless CMS serving editorial
// content: the events catalogue and story collections. Payloads are
// returned raw, same as the data API.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resty.dev/v3"
)

// Client talks to the CMS content API.
type Client struct {
	http *resty.Client
}

// New creates a CMS client for the given base URL. token may be empty for
// public collections.
func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("cms base URL required")
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	var out json.RawMessage
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("cms %s: status %s", path, res.Status())
	}
	return out, nil
}

// EventsList fetches the published events catalogue.
func (c *Client) EventsList(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/events", map[string]string{
		"status": "published",
		"sort":   "starts_at",
	})
}

// EventsHostedAttended fetches events the viewer hosts or attended.
func (c *Client) EventsHostedAttended(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/events", map[string]string{
		"participant": viewerID,
	})
}

// EventsLiked fetches events the viewer liked.
func (c *Client) EventsLiked(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/events", map[string]string{
		"liked_by": viewerID,
	})
}

// StoriesList fetches the viewer's story tray.
func (c *Client) StoriesList(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/stories", map[string]string{
		"viewer": viewerID,
	})
}
