// cmd/worker consumes warm:viewer tasks and pre-populates the shared
// Redis cache so a viewer's next boot finds every lane already hot.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/pulseapp/pulse-go/api"
	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/cms"
	"github.com/pulseapp/pulse-go/internal/config"
	"github.com/pulseapp/pulse-go/internal/jobs"
	"github.com/pulseapp/pulse-go/query"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if !cfg.HasCMS() {
		logger.Fatal().Msg("PULSE_CMS_URL is required")
	}

	// The worker runs server-side and fetches on behalf of viewers, so it
	// authenticates with the service key when one is configured.
	apiKey := cfg.ServiceKey
	if apiKey == "" {
		apiKey = cfg.AnonKey
	}
	apiOpts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	}
	if cfg.ServiceKey != "" {
		apiOpts = append(apiOpts, api.WithTokenSource(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ServiceKey})))
	}
	dataClient, err := api.New(cfg.ProjectURL, apiKey, apiOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("data client init")
	}
	contentClient, err := cms.New(cfg.CMSBaseURL, cfg.CMSToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("cms client init")
	}

	reg := query.Build(api.Sources{Client: dataClient, Content: contentClient})
	store := cache.NewRedis(goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}), "pulse:cache", logger)

	w := &warmer{store: store, reg: reg, warmConversations: cfg.WarmConversations, log: logger}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"warm":    10,
				"default": 5,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskWarmViewer, w.handleWarmViewer)

	logger.Info().Str("redis", cfg.RedisAddr).Msg("warm worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker exited")
	}
}

type warmer struct {
	store             cache.Store
	reg               *query.Registry
	warmConversations int
	log               zerolog.Logger
}

// handleWarmViewer runs every registered query for one viewer and writes
// the results into the shared cache. Individual fetch failures are logged
// and skipped; the task only fails when the payload is unusable.
func (w *warmer) handleWarmViewer(ctx context.Context, t *asynq.Task) error {
	var payload jobs.WarmViewerPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("warm payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.ViewerID == "" {
		return fmt.Errorf("warm payload: empty viewer id: %w", asynq.SkipRetry)
	}

	start := time.Now()
	warmed := 0
	for lane := query.Lane(0); lane < query.NumLanes; lane++ {
		if lane == query.LaneDerived {
			warmed += w.warmDerived(ctx, payload.ViewerID)
			continue
		}
		for _, d := range w.reg.Lane(lane) {
			if w.warmOne(ctx, d, payload.ViewerID) {
				warmed++
			}
		}
	}

	w.log.Info().
		Str("viewer", payload.ViewerID).
		Int("warmed", warmed).
		Dur("took", time.Since(start)).
		Msg("viewer cache warmed")

	// A total wipeout usually means the data API is down; let asynq retry.
	// Partial success is fine, the device's own boot prefetch covers gaps.
	if warmed == 0 {
		return fmt.Errorf("warm viewer %s: no query succeeded", payload.ViewerID)
	}
	return nil
}

func (w *warmer) warmOne(ctx context.Context, d query.Descriptor, viewerID string, params ...string) bool {
	value, err := d.FetchFor(viewerID, params...)(ctx)
	if err != nil {
		w.log.Warn().Err(err).Str("query", d.Name).Str("viewer", viewerID).Msg("warm fetch failed")
		return false
	}
	w.store.Set(d.KeyFor(viewerID, params...), value)
	return true
}

// warmDerived mirrors the boot scheduler's derived lane: read the warmed
// conversation list and fetch history for the first few conversations.
func (w *warmer) warmDerived(ctx context.Context, viewerID string) int {
	d, ok := w.reg.Get(query.Messages)
	if !ok {
		return 0
	}
	entry, ok := w.store.Get(query.KeyFor(query.Conversations, viewerID))
	if !ok {
		return 0
	}
	ids := conversationIDs(entry.Value)
	if len(ids) > w.warmConversations {
		ids = ids[:w.warmConversations]
	}
	warmed := 0
	for _, id := range ids {
		if w.warmOne(ctx, d, viewerID, id) {
			warmed++
		}
	}
	return warmed
}

// conversationIDs extracts ids from a cached conversation-list payload,
// accepting either a bare array of conversations or an object wrapping one.
func conversationIDs(raw json.RawMessage) []string {
	type conv struct {
		ID string `json:"id"`
	}
	var convs []conv
	if err := json.Unmarshal(raw, &convs); err != nil {
		var wrapper struct {
			Conversations []conv `json:"conversations"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil
		}
		convs = wrapper.Conversations
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
