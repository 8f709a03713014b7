// Package prefetch implements the boot-time cache priming pipeline: once
// a viewer is known, the registry's queries fire in delay-ordered priority
// lanes, each success landing in the shared cache as it arrives.
package prefetch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/internal/metrics"
	"github.com/pulseapp/pulse-go/query"
)

// ErrNoViewer is returned when Schedule is called without an identity.
var ErrNoViewer = errors.New("prefetch: viewer identity required")

// Config tunes the scheduler. Lane delays are measured from dispatch t0,
// not from the previous lane's completion: a slow lane never pushes later
// lanes back, which caps total perceived latency.
type Config struct {
	// LaneDelays holds each lane's wall-clock delay from t0.
	LaneDelays [query.NumLanes]time.Duration

	// WarmConversations is how many conversations lane 4 warms message
	// history for, in conversation-list order.
	WarmConversations int
}

// DefaultConfig returns the reference lane timings.
func DefaultConfig() Config {
	return Config{
		LaneDelays: [query.NumLanes]time.Duration{
			0,
			100 * time.Millisecond,
			400 * time.Millisecond,
			1000 * time.Millisecond,
			2000 * time.Millisecond,
		},
		WarmConversations: 3,
	}
}

// BootSession scopes one run of the full lane sequence to one viewer.
// At most one session dispatches lanes per viewer per process run; an
// identity change produces a fresh session with its own keys.
type BootSession struct {
	ID        string
	ViewerID  string
	StartedAt time.Time
}

// Scheduler is the priority-lane dispatcher. It never blocks its caller:
// Schedule starts timers and returns, and every fetch runs in its own
// goroutine writing to the store only on success.
type Scheduler struct {
	store cache.Store
	reg   *query.Registry
	guard Guard
	cfg   Config
	log   zerolog.Logger

	mu      sync.Mutex
	session *BootSession
}

// New creates a scheduler over the given store and registry.
func New(store cache.Store, reg *query.Registry, guard Guard, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.WarmConversations <= 0 {
		cfg.WarmConversations = DefaultConfig().WarmConversations
	}
	return &Scheduler{store: store, reg: reg, guard: guard, cfg: cfg, log: log}
}

// Session returns the current boot session, if any.
func (s *Scheduler) Session() *BootSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Schedule dispatches the lane sequence for viewerID. Calling it again
// with the same viewer is a no-op; a different viewer starts a fresh
// session. The safe-mode guard is consulted exactly once, before lane 0.
// Schedule returns before any fetch completes.
func (s *Scheduler) Schedule(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		return ErrNoViewer
	}

	s.mu.Lock()
	if s.session != nil && s.session.ViewerID == viewerID {
		s.mu.Unlock()
		s.log.Debug().Str("viewer", viewerID).Msg("boot prefetch already dispatched for viewer")
		return nil
	}
	if s.guard.Enabled() {
		s.mu.Unlock()
		s.log.Warn().Str("viewer", viewerID).Msg("safe mode enabled, boot prefetch suppressed")
		return nil
	}
	sess := &BootSession{
		ID:        uuid.NewString(),
		ViewerID:  viewerID,
		StartedAt: time.Now(),
	}
	s.session = sess
	s.mu.Unlock()

	status := DetectStatus(s.store, viewerID)
	phase := "initial load"
	if status == StatusFull {
		phase = "background refresh"
	}
	s.log.Info().
		Str("session", sess.ID).
		Str("viewer", viewerID).
		Stringer("cache_status", status).
		Str("phase", phase).
		Msg("boot prefetch dispatched")

	for lane := query.Lane(0); lane < query.NumLanes; lane++ {
		lane := lane
		run := func() {
			if lane == query.LaneDerived {
				s.runDerivedLane(ctx, sess)
				return
			}
			s.runLane(ctx, sess, lane)
		}
		if delay := s.cfg.LaneDelays[lane]; delay > 0 {
			time.AfterFunc(delay, run)
		} else {
			go run()
		}
	}
	return nil
}

// runLane fires a lane's queries concurrently, waits for the batch to
// settle and logs the summary. One query's failure never touches its
// siblings.
func (s *Scheduler) runLane(ctx context.Context, sess *BootSession, lane query.Lane) {
	descs := s.reg.Lane(lane)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0

	for _, d := range descs {
		wg.Add(1)
		go func(d query.Descriptor) {
			defer wg.Done()
			ok := s.runQuery(ctx, sess, lane, d)
			mu.Lock()
			if ok {
				succeeded++
			} else {
				failed++
			}
			mu.Unlock()
		}(d)
	}
	wg.Wait()

	s.settle(sess, lane, succeeded, failed)
}

// runDerivedLane warms per-conversation message history using whatever
// conversation list lane 2 managed to land. An absent list means less
// work, never an error or a wait.
func (s *Scheduler) runDerivedLane(ctx context.Context, sess *BootSession) {
	lane := query.LaneDerived

	entry, ok := s.store.Get(query.KeyFor(query.Conversations, sess.ViewerID))
	if !ok {
		s.log.Debug().
			Str("session", sess.ID).
			Msg("conversation list absent, skipping message warmup")
		s.settle(sess, lane, 0, 0)
		return
	}

	ids := conversationIDs(entry.Value)
	if len(ids) > s.cfg.WarmConversations {
		ids = ids[:s.cfg.WarmConversations]
	}

	d, ok := s.reg.Get(query.Messages)
	if !ok || len(ids) == 0 {
		s.settle(sess, lane, 0, 0)
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0
	for _, id := range ids {
		wg.Add(1)
		go func(conversationID string) {
			defer wg.Done()
			ok := s.runQuery(ctx, sess, lane, d, conversationID)
			mu.Lock()
			if ok {
				succeeded++
			} else {
				failed++
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	s.settle(sess, lane, succeeded, failed)
}

// runQuery performs one fetch and writes the result on success. Failures
// leave the prior entry untouched and are logged with lane and query name;
// there is no retry within a boot session.
func (s *Scheduler) runQuery(ctx context.Context, sess *BootSession, lane query.Lane, d query.Descriptor, params ...string) bool {
	value, err := d.FetchFor(sess.ViewerID, params...)(ctx)
	if err != nil {
		metrics.LaneQuery(int(lane), "failed")
		s.log.Warn().
			Err(err).
			Int("lane", int(lane)).
			Str("query", d.Name).
			Str("session", sess.ID).
			Msg("prefetch query failed")
		return false
	}
	s.store.Set(d.KeyFor(sess.ViewerID, params...), value)
	metrics.LaneQuery(int(lane), "ok")
	return true
}

func (s *Scheduler) settle(sess *BootSession, lane query.Lane, succeeded, failed int) {
	elapsed := time.Since(sess.StartedAt)
	metrics.LaneSettled(int(lane), elapsed.Seconds())
	s.log.Info().
		Str("session", sess.ID).
		Int("lane", int(lane)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("prefetch lane settled")
}

// conversationIDs extracts conversation ids from the cached list payload,
// accepting either a bare array or a {"conversations": [...]} wrapper.
func conversationIDs(raw json.RawMessage) []string {
	type ref struct {
		ID string `json:"id"`
	}
	collect := func(refs []ref) []string {
		ids := make([]string, 0, len(refs))
		for _, r := range refs {
			if r.ID != "" {
				ids = append(ids, r.ID)
			}
		}
		return ids
	}

	var list []ref
	if err := json.Unmarshal(raw, &list); err == nil {
		return collect(list)
	}
	var wrapper struct {
		Conversations []ref `json:"conversations"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		return collect(wrapper.Conversations)
	}
	return nil
}
