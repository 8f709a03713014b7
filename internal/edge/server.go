// Package edge implements the thin edge-function layer the mobile app
// calls: session-scoped proxy reads over the product database, plus the
// hook that schedules offline cache warming for a viewer.
package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pulseapp/pulse-go/internal/jobs"
)

type contextKey string

const viewerKey contextKey = "viewer_id"

const sessionViewerKey = "viewer_id"

func contextWithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerKey, viewerID)
}

func viewerFrom(ctx context.Context) string {
	v, _ := ctx.Value(viewerKey).(string)
	return v
}

// Server is the edge router and its dependencies.
type Server struct {
	Router *chi.Mux
	Sess   *scs.SessionManager
	Q      Queries
	Jobs   *asynq.Client // optional; nil disables warm scheduling
	Log    zerolog.Logger
}

// ServerOptions carries the dependencies for New.
type ServerOptions struct {
	Sess *scs.SessionManager
	Q    Queries
	Jobs *asynq.Client
	Log  zerolog.Logger
}

// New assembles the edge router.
func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Sess: opts.Sess, Q: opts.Q, Jobs: opts.Jobs, Log: opts.Log}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/session", s.handleSessionStart)
	r.Route("/edge", func(r chi.Router) {
		r.Use(s.requireViewer)
		r.Get("/feed", s.handleFeed)
		r.Get("/posts/mine", s.handleOwnPosts)
		r.Get("/bookmarks", s.handleBookmarks)
	})

	return s
}

// requireViewer rejects requests without an authenticated session and
// stashes the viewer id in the request context.
func (s *Server) requireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewerID := s.Sess.GetString(r.Context(), sessionViewerKey)
		if viewerID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		ctx := contextWithViewer(r.Context(), viewerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleSessionStart records the authenticated viewer in the session.
// Authentication itself happens upstream; this endpoint receives the
// already-verified identity and schedules a cache warm for it.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ViewerID string `json:"viewer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(body.ViewerID); err != nil {
		http.Error(w, "invalid viewer id", http.StatusBadRequest)
		return
	}

	if err := s.Sess.RenewToken(r.Context()); err != nil {
		s.Log.Error().Err(err).Msg("session renew failed")
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	s.Sess.Put(r.Context(), sessionViewerKey, body.ViewerID)

	if s.Jobs != nil {
		task, err := jobs.NewWarmViewerTask(body.ViewerID)
		if err == nil {
			if _, err := s.Jobs.Enqueue(task, asynq.Queue("warm")); err != nil {
				s.Log.Warn().Err(err).Str("viewer", body.ViewerID).Msg("warm enqueue failed")
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	const pageSize = 20
	posts, err := s.Q.FeedPage(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		s.fail(w, r, "feed query failed", err)
		return
	}
	s.respondJSON(w, posts)
}

func (s *Server) handleOwnPosts(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerFrom(r.Context())
	posts, err := s.Q.PostsByAuthor(r.Context(), viewerID)
	if err != nil {
		s.fail(w, r, "own posts query failed", err)
		return
	}
	s.respondJSON(w, posts)
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerFrom(r.Context())
	bookmarks, err := s.Q.BookmarksFor(r.Context(), viewerID)
	if err != nil {
		s.fail(w, r, "bookmarks query failed", err)
		return
	}
	s.respondJSON(w, bookmarks)
}

func (s *Server) respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error().Err(err).Msg("encode response failed")
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.Log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
