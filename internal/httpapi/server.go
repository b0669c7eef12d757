package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/park285/pubg-card-studio/internal/msgcat"
	"github.com/park285/pubg-card-studio/internal/studio"
	"go.uber.org/zap"
)

const (
	defaultMaxUpload  = 32 << 20
	defaultAPITimeout = 30 * time.Second
)

type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	APITimeout     time.Duration
}

// Server exposes page sessions over REST and a websocket.
type Server struct {
	registry *studio.Registry
	catalog  *msgcat.Catalog
	logger   *zap.Logger
	cfg      Config
}

func NewServer(registry *studio.Registry, catalog *msgcat.Catalog, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = defaultAPITimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{registry: registry, catalog: catalog, logger: logger, cfg: cfg}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/", s.index)

	r.Route("/api", func(r chi.Router) {
		timeout := chimiddleware.Timeout(s.cfg.APITimeout)

		r.With(timeout).Get("/themes", s.listThemes)
		r.With(timeout).Get("/roles", s.listRoles)
		r.With(timeout).Post("/sessions", s.createSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			// long-lived; kept outside the request timeout
			r.Get("/ws", s.liveSync)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Put("/fields/{field}", s.setField)
				r.Put("/role", s.selectRole)
				r.Put("/theme", s.selectTheme)
				r.Post("/image", s.uploadImage)
				r.Get("/preview.png", s.preview)
				r.Post("/export", s.export)
				r.Get("/toasts", s.toasts)
			})
		})
	})

	return r
}
