// Package api is the app's client for the Postgres-backed BaaS REST API.
// Every method returns the raw JSON payload; the prefetch core treats
// results as opaque and only the UI layer decodes them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const restPrefix = "/rest/v1"

// feedPageSize matches the first screenful the feed renders.
const feedPageSize = 20

// Client talks to the BaaS data API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
	tokens  oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource sets the viewer's bearer-token source. Without one,
// requests carry only the project API key (anonymous role).
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for the project at rawURL authenticated by apiKey.
func New(rawURL, apiKey string, opts ...Option) (*Client, error) {
	if rawURL == "" {
		return nil, errors.New("project URL required")
	}
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse project URL: %w", err)
	}
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) newReq(ctx context.Context, method, p string, q url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, restPrefix, p)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("viewer token: %w", err)
		}
		tok.SetAuthHeader(req)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
	}
	return data, nil
}

// get performs a table read.
func (c *Client) get(ctx context.Context, table string, q url.Values) (json.RawMessage, error) {
	req, err := c.newReq(ctx, http.MethodGet, table, q, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// rpc calls a database function.
func (c *Client) rpc(ctx context.Context, fn string, args any) (json.RawMessage, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, err := c.newReq(ctx, http.MethodPost, path.Join("rpc", fn), nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// FeedPage fetches one page of the home feed.
func (c *Client) FeedPage(ctx context.Context, viewerID string, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("select", "*,author:profiles(id,handle,avatar_url)")
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(feedPageSize))
	q.Set("offset", strconv.Itoa((page-1)*feedPageSize))
	return c.get(ctx, "posts", q)
}

// OwnProfile fetches the viewer's profile.
func (c *Client) OwnProfile(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("id", "eq."+viewerID)
	q.Set("select", "*")
	return c.get(ctx, "profiles", q)
}

// UnreadCounts fetches per-conversation unread message counts.
func (c *Client) UnreadCounts(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.rpc(ctx, "unread_message_counts", map[string]string{"viewer_id": viewerID})
}

// NotificationBadges fetches the tab-bar badge numbers.
func (c *Client) NotificationBadges(ctx context.Context, viewerID string) (json.RawMessage, error) {
	return c.rpc(ctx, "notification_badges", map[string]string{"viewer_id": viewerID})
}

// Conversations fetches the viewer's conversation list, most recent first.
func (c *Client) Conversations(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("participants", "cs.{"+viewerID+"}")
	q.Set("order", "last_message_at.desc")
	return c.get(ctx, "conversations", q)
}

// RecentActivity fetches the viewer's recent-activity feed.
func (c *Client) RecentActivity(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+viewerID)
	q.Set("order", "created_at.desc")
	q.Set("limit", "50")
	return c.get(ctx, "activity", q)
}

// FilteredInbox fetches conversations with unread messages.
func (c *Client) FilteredInbox(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("participants", "cs.{"+viewerID+"}")
	q.Set("unread_count", "gt.0")
	q.Set("order", "last_message_at.desc")
	return c.get(ctx, "conversations", q)
}

// OwnPosts fetches the viewer's posts.
func (c *Client) OwnPosts(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("author_id", "eq."+viewerID)
	q.Set("order", "created_at.desc")
	return c.get(ctx, "posts", q)
}

// Bookmarks fetches the viewer's bookmarked posts.
func (c *Client) Bookmarks(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+viewerID)
	q.Set("select", "*,post:posts(*)")
	q.Set("order", "created_at.desc")
	return c.get(ctx, "bookmarks", q)
}

// Notifications fetches the viewer's notification list.
func (c *Client) Notifications(ctx context.Context, viewerID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+viewerID)
	q.Set("order", "created_at.desc")
	q.Set("limit", "50")
	return c.get(ctx, "notifications", q)
}

// MessageHistory fetches one conversation's recent messages.
func (c *Client) MessageHistory(ctx context.Context, viewerID, conversationID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("conversation_id", "eq."+conversationID)
	q.Set("order", "created_at.desc")
	q.Set("limit", "50")
	return c.get(ctx, "messages", q)
}
