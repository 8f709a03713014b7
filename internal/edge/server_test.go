package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueries struct {
	posts []Post
	err   error
}

func (f *fakeQueries) FeedPage(ctx context.Context, limit, offset int) ([]Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

func (f *fakeQueries) PostsByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	var mine []Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

func (f *fakeQueries) BookmarksFor(ctx context.Context, viewerID string) ([]Bookmark, error) {
	return nil, f.err
}

func newTestServer(q Queries) (*Server, http.Handler) {
	sess := scs.New()
	s := New(ServerOptions{Sess: sess, Q: q, Log: zerolog.Nop()})
	return s, sess.LoadAndSave(s.Router)
}

func login(t *testing.T, h http.Handler, viewerID string) *http.Cookie {
	t.Helper()
	body := strings.NewReader(`{"viewer_id":"` + viewerID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/session", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestEdge_RequiresSession(t *testing.T) {
	_, h := newTestServer(&fakeQueries{})
	req := httptest.NewRequest(http.MethodGet, "/edge/feed", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEdge_SessionRejectsBadViewerID(t *testing.T) {
	_, h := newTestServer(&fakeQueries{})
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"viewer_id":"not-a-uuid"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEdge_FeedRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	q := &fakeQueries{posts: []Post{
		{ID: "p1", AuthorID: "a1", Body: "hello", CreatedAt: now},
		{ID: "p2", AuthorID: "a2", Body: "again", CreatedAt: now},
	}}
	_, h := newTestServer(q)
	cookie := login(t, h, "7b0d67a2-9a3f-4f2e-9a61-0a0c5ab3f001")

	req := httptest.NewRequest(http.MethodGet, "/edge/feed", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestEdge_OwnPostsScopedToViewer(t *testing.T) {
	const viewer = "7b0d67a2-9a3f-4f2e-9a61-0a0c5ab3f001"
	q := &fakeQueries{posts: []Post{
		{ID: "p1", AuthorID: viewer},
		{ID: "p2", AuthorID: "someone-else"},
	}}
	_, h := newTestServer(q)
	cookie := login(t, h, viewer)

	req := httptest.NewRequest(http.MethodGet, "/edge/posts/mine", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestEdge_Healthz(t *testing.T) {
	_, h := newTestServer(&fakeQueries{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
