// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	// Data API (the Postgres-backed BaaS).
	ProjectURL string `env:"PULSE_PROJECT_URL"`
	AnonKey    string `env:"PULSE_ANON_KEY"`
	// ServiceKey is used by server-side components (warm worker); it
	// bypasses row-level security, so it never ships on device.
	ServiceKey string `env:"PULSE_SERVICE_KEY"`

	// Headless CMS (events catalogue, stories).
	CMSBaseURL string `env:"PULSE_CMS_URL"`
	CMSToken   string `env:"PULSE_CMS_TOKEN"`

	// Edge proxy.
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"PULSE_DATABASE_URL"`

	// Warm worker / shared cache.
	RedisAddr string `env:"PULSE_REDIS_ADDR" envDefault:"localhost:6379"`

	// Device cache persistence.
	SnapshotPath string `env:"PULSE_SNAPSHOT_PATH" envDefault:".pulse/cache.json"`

	// Device identity, normally injected by the host app's auth layer.
	ViewerID    string `env:"PULSE_VIEWER_ID"`
	AccessToken string `env:"PULSE_ACCESS_TOKEN"`

	// Prefetch / refresh tuning.
	ResumeWindow      time.Duration `env:"PULSE_RESUME_WINDOW" envDefault:"30s"`
	WarmConversations int           `env:"PULSE_WARM_CONVERSATIONS" envDefault:"3"`
	SafeMode          bool          `env:"PULSE_SAFE_MODE" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// HasCMS returns true if CMS configuration is present.
func (c *Config) HasCMS() bool {
	return c.CMSBaseURL != ""
}

// Validate ensures the configuration can reach the data API.
func (c *Config) Validate() error {
	if c.ProjectURL == "" {
		return fmt.Errorf("PULSE_PROJECT_URL is required")
	}
	if c.AnonKey == "" {
		return fmt.Errorf("PULSE_ANON_KEY is required")
	}
	return nil
}
