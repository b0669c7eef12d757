package config

import (
	"testing"
	"time"

	"github.com/park285/pubg-card-studio/internal/capture"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "ALLOWED_ORIGINS", "CAPTURE_BACKEND", "CHROME_URL",
		"CAPTURE_TIMEOUT_SEC", "SESSION_IDLE_TTL_SEC", "MAX_SESSIONS",
		"TOAST_TTL_SEC", "MESSAGES_DIR", "MAX_UPLOAD_MB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CaptureBackend != capture.BackendNative {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.SessionIdleTTL != 30*time.Minute || cfg.MaxSessions != 500 || cfg.ToastTTL != 5*time.Second {
		t.Fatalf("session defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes != 32<<20 || len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("transport defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("CAPTURE_BACKEND", "Chromedp")
	t.Setenv("CHROME_URL", "ws://127.0.0.1:9222")
	t.Setenv("CAPTURE_TIMEOUT_SEC", "3")
	t.Setenv("MAX_SESSIONS", "-1")
	t.Setenv("TOAST_TTL_SEC", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" || len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("overrides: %+v", cfg)
	}
	if cfg.CaptureBackend != capture.BackendChromedp || cfg.CaptureTimeout != 3*time.Second {
		t.Fatalf("capture: %+v", cfg)
	}
	if cfg.MaxSessions != 500 || cfg.ToastTTL != 5*time.Second {
		t.Fatalf("invalid numbers should keep defaults: %+v", cfg)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("CAPTURE_BACKEND", "gpu")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	t.Setenv("CAPTURE_BACKEND", "chromedp")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when CHROME_URL is missing")
	}
}
