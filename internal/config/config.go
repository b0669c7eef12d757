package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/pubg-card-studio/internal/capture"
)

type AppConfig struct {
	HTTPAddr       string
	AllowedOrigins []string

	CaptureBackend string
	ChromeURL      string
	CaptureTimeout time.Duration

	SessionIdleTTL time.Duration
	MaxSessions    int
	ToastTTL       time.Duration

	MessagesDir    string
	MaxUploadBytes int64
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		CaptureBackend: capture.BackendNative,
		CaptureTimeout: 15 * time.Second,
		SessionIdleTTL: 1800 * time.Second,
		MaxSessions:    500,
		ToastTTL:       5 * time.Second,
		MaxUploadBytes: 32 << 20,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, s)
			}
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if v := strings.TrimSpace(os.Getenv("CAPTURE_BACKEND")); v != "" {
		cfg.CaptureBackend = strings.ToLower(v)
	}
	cfg.ChromeURL = strings.TrimSpace(os.Getenv("CHROME_URL"))
	if n, ok := positiveInt("CAPTURE_TIMEOUT_SEC"); ok {
		cfg.CaptureTimeout = time.Duration(n) * time.Second
	}

	if n, ok := positiveInt("SESSION_IDLE_TTL_SEC"); ok {
		cfg.SessionIdleTTL = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt("MAX_SESSIONS"); ok {
		cfg.MaxSessions = n
	}
	if n, ok := positiveInt("TOAST_TTL_SEC"); ok {
		cfg.ToastTTL = time.Duration(n) * time.Second
	}

	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	if n, ok := positiveInt("MAX_UPLOAD_MB"); ok {
		cfg.MaxUploadBytes = int64(n) << 20
	}

	switch cfg.CaptureBackend {
	case capture.BackendNative:
	case capture.BackendChromedp:
		if cfg.ChromeURL == "" {
			return nil, errors.New("CHROME_URL is required for the chromedp capture backend")
		}
	default:
		return nil, fmt.Errorf("CAPTURE_BACKEND must be %q or %q, got %q", capture.BackendNative, capture.BackendChromedp, cfg.CaptureBackend)
	}

	return cfg, nil
}

// non-numeric or non-positive values keep the default
func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
