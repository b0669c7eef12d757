package studiobuilder

import (
	"fmt"
	"net/http"

	"github.com/park285/pubg-card-studio/internal/adapter/cardpresenter"
	"github.com/park285/pubg-card-studio/internal/capture"
	"github.com/park285/pubg-card-studio/internal/config"
	"github.com/park285/pubg-card-studio/internal/httpapi"
	"github.com/park285/pubg-card-studio/internal/msgcat"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"github.com/park285/pubg-card-studio/internal/studio"
	"go.uber.org/zap"
)

type Deps struct {
	Catalog  *msgcat.Catalog
	Capturer card.Capturer
	Registry *studio.Registry
	Server   *httpapi.Server
	Handler  http.Handler

	closeCapturer func() error
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	capturer, closeCapturer, err := capture.New(capture.Options{
		Backend:   cfg.CaptureBackend,
		ChromeURL: cfg.ChromeURL,
		Timeout:   cfg.CaptureTimeout,
	}, logger.Named("capture"))
	if err != nil {
		return nil, fmt.Errorf("init capture: %w", err)
	}

	registry := studio.NewRegistry(studio.Options{
		Renderer:    card.NewSVGCardRenderer(logger.Named("render")),
		Capturer:    capturer,
		NewNotifier: cardpresenter.NewToasterFactory(catalog, cardpresenter.ToasterConfig{TTL: cfg.ToastTTL}),
		Logger:      logger.Named("studio"),
	}, studio.RegistryConfig{
		IdleTTL:     cfg.SessionIdleTTL,
		MaxSessions: cfg.MaxSessions,
	})

	server := httpapi.NewServer(registry, catalog, logger.Named("http"), httpapi.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	logger.Info("card studio wired",
		zap.String("capture", cfg.CaptureBackend),
		zap.Duration("session_ttl", cfg.SessionIdleTTL),
		zap.Int("max_sessions", cfg.MaxSessions),
	)

	return &Deps{
		Catalog:       catalog,
		Capturer:      capturer,
		Registry:      registry,
		Server:        server,
		Handler:       server.Router(),
		closeCapturer: closeCapturer,
	}, nil
}

// Start launches background work (the idle-session sweeper).
func (d *Deps) Start() {
	d.Registry.Start()
}

// Close destroys every session and releases the capture backend.
func (d *Deps) Close() error {
	d.Registry.Close()
	if d.closeCapturer != nil {
		return d.closeCapturer()
	}
	return nil
}
