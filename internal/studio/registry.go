package studio

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/pubg-card-studio/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

type RegistryConfig struct {
	IdleTTL       time.Duration
	MaxSessions   int
	SweepInterval time.Duration
}

// Registry holds one coordinator per page session. Nothing outlives the
// process; idle sessions are destroyed by the sweeper.
type Registry struct {
	opts Options
	cfg  RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Coordinator

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRegistry(opts Options, cfg RegistryConfig) *Registry {
	opts = opts.withDefaults()
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Registry{
		opts:     opts,
		cfg:      cfg,
		sessions: make(map[string]*Coordinator),
		stopCh:   make(chan struct{}),
	}
}

// Create starts a new page session seeded with the default snapshot.
func (r *Registry) Create() (*Coordinator, error) {
	r.mu.RLock()
	full := r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions
	r.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	c, err := NewCoordinator(id, domain.DefaultPlayerInfo(), domain.DefaultTheme(), r.opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		c.Close()
		return nil, ErrTooManySessions
	}
	r.sessions[id] = c
	n := len(r.sessions)
	r.mu.Unlock()

	r.opts.Logger.Info("session created", zap.String("session", id), zap.Int("sessions", n))
	return c, nil
}

func (r *Registry) Get(id string) (*Coordinator, error) {
	r.mu.RLock()
	c, ok := r.sessions[strings.TrimSpace(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	c.Touch()
	return c, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	c, ok := r.sessions[strings.TrimSpace(id)]
	if ok {
		delete(r.sessions, c.ID())
	}
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	r.opts.Logger.Info("session destroyed", zap.String("session", c.ID()))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep destroys sessions idle since before now-IdleTTL and reports how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL)
	var expired []*Coordinator

	r.mu.Lock()
	for id, c := range r.sessions {
		if c.LastActive().Before(cutoff) {
			expired = append(expired, c)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		r.opts.Logger.Info("idle sessions swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Start runs the idle sweeper until Close.
func (r *Registry) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(r.cfg.SweepInterval)
		defer t.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-t.C:
				r.Sweep(r.opts.Now())
			}
		}
	}()
}

// Close stops the sweeper and destroys every session.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Coordinator)
	r.mu.Unlock()
	for _, c := range sessions {
		c.Close()
	}
}
