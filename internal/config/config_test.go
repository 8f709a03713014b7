package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ResumeWindow != 30*time.Second {
		t.Errorf("ResumeWindow = %v, want 30s", cfg.ResumeWindow)
	}
	if cfg.WarmConversations != 3 {
		t.Errorf("WarmConversations = %d, want 3", cfg.WarmConversations)
	}
	if cfg.SafeMode {
		t.Error("SafeMode should default to off")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PULSE_PROJECT_URL", "https://db.pulse.test")
	t.Setenv("PULSE_ANON_KEY", "anon")
	t.Setenv("PULSE_RESUME_WINDOW", "45s")
	t.Setenv("PULSE_SAFE_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if cfg.ResumeWindow != 45*time.Second {
		t.Errorf("ResumeWindow = %v, want 45s", cfg.ResumeWindow)
	}
	if !cfg.SafeMode {
		t.Error("SafeMode should be on")
	}
}

func TestValidate_MissingProject(t *testing.T) {
	cfg := &Config{AnonKey: "anon"}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without a project URL")
	}
	cfg = &Config{ProjectURL: "https://db.pulse.test"}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without an API key")
	}
}
