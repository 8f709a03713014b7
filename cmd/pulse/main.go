// cmd/pulse runs the device-side engine: restore the cache snapshot, prime
// it once the viewer is known, refresh on resume, persist on shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/pulseapp/pulse-go/api"
	"github.com/pulseapp/pulse-go/cache"
	"github.com/pulseapp/pulse-go/cms"
	"github.com/pulseapp/pulse-go/internal/config"
	"github.com/pulseapp/pulse-go/lifecycle"
	"github.com/pulseapp/pulse-go/prefetch"
	"github.com/pulseapp/pulse-go/query"
	"github.com/pulseapp/pulse-go/refresh"
	"github.com/pulseapp/pulse-go/session"
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

	// Cache: restore last session's snapshot before anything renders.
	store := cache.NewMemory()
	snap, err := cache.NewSnapshotter(cfg.SnapshotPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshotter init")
	}
	if err := snap.RestoreInto(store); err != nil {
		logger.Warn().Err(err).Msg("snapshot restore failed, starting cold")
	}

	// Remote collaborators.
	var apiOpts []api.Option
	apiOpts = append(apiOpts, api.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))
	if cfg.AccessToken != "" {
		apiOpts = append(apiOpts, api.WithTokenSource(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})))
	}
	dataClient, err := api.New(cfg.ProjectURL, cfg.AnonKey, apiOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("data client init")
	}
	contentClient, err := cms.New(cfg.CMSBaseURL, cfg.CMSToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("cms client init")
	}

	reg := query.Build(api.Sources{Client: dataClient, Content: contentClient})

	guard := prefetch.NewFlag(cfg.SafeMode)
	schedCfg := prefetch.DefaultConfig()
	schedCfg.WarmConversations = cfg.WarmConversations
	scheduler := prefetch.New(store, reg, guard, schedCfg, logger)

	ident := session.NewIdentity()
	throttle := refresh.New(store, reg, cfg.ResumeWindow, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := lifecycle.NewWatcher()
	watcher.Subscribe(func(from, to lifecycle.State) {
		if viewerID, ok := ident.ViewerID(); ok {
			throttle.OnTransition(ctx, viewerID, from, to)
		}
	})

	// The host app's auth layer hands us the viewer; here it arrives via
	// config. Prefetch fires the moment identity is known.
	if cfg.ViewerID != "" {
		ident.Set(cfg.ViewerID)
		if err := scheduler.Schedule(ctx, cfg.ViewerID); err != nil {
			logger.Error().Err(err).Msg("boot prefetch dispatch failed")
		}
	} else {
		logger.Info().Msg("no viewer yet, prefetch deferred until sign-in")
	}

	<-ctx.Done()

	if err := snap.SaveFrom(store); err != nil {
		logger.Error().Err(err).Msg("snapshot save failed")
	} else {
		logger.Info().Int("entries", store.Len()).Msg("cache snapshot saved")
	}
}
