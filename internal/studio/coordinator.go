package studio

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/park285/pubg-card-studio/internal/editor"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("session closed")

// Notifier is the per-session toast sink.
type Notifier interface {
	card.Notifier
	ImageFailed(filename string, err error)
	Active() []domain.Toast
}

// NotifierFactory builds a session notifier that delivers toasts through
// publish.
type NotifierFactory func(publish func(domain.Toast)) Notifier

type Options struct {
	Renderer    card.CardRenderer
	Capturer    card.Capturer
	NewNotifier NotifierFactory
	Logger      *zap.Logger
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Renderer == nil {
		o.Renderer = card.NewSVGCardRenderer(o.Logger)
	}
	if o.Capturer == nil {
		o.Capturer = card.NativeCapturer{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// State is a read-only view of a page session.
type State struct {
	SessionID   string
	Version     uint64
	PlayerInfo  domain.PlayerInfo
	Theme       domain.CardTheme
	Layout      card.Layout
	ExportState card.ExportState
	UpdatedAt   time.Time
}

type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventToast    EventType = "toast"
)

type Event struct {
	Type  EventType
	State *State
	Toast *domain.Toast
}

// Coordinator is the page-level owner of one PlayerInfo/CardTheme pair. The
// editor form pushes snapshots into it through injected callbacks and it
// re-renders the preview surface on every change.
type Coordinator struct {
	id     string
	opts   Options
	logger *zap.Logger

	mu        sync.RWMutex
	info      domain.PlayerInfo
	theme     domain.CardTheme
	surface   *card.Surface
	version   uint64
	updatedAt time.Time
	closed    bool

	form     *editor.Form
	exporter *card.Exporter
	notifier Notifier

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int

	lastActive atomic.Int64
}

func NewCoordinator(id string, info domain.PlayerInfo, theme domain.CardTheme, opts Options) (*Coordinator, error) {
	opts = opts.withDefaults()
	c := &Coordinator{
		id:     id,
		opts:   opts,
		logger: opts.Logger.With(zap.String("session", id)),
		info:   info,
		theme:  theme,
		subs:   make(map[int]chan Event),
	}
	if opts.NewNotifier != nil {
		c.notifier = opts.NewNotifier(c.publishToast)
	}

	surface, err := opts.Renderer.Render(context.Background(), info, theme)
	if err != nil {
		return nil, err
	}
	c.surface = surface
	c.updatedAt = opts.Now()
	c.Touch()

	var notifier card.Notifier
	if c.notifier != nil {
		notifier = c.notifier
	}
	c.exporter = card.NewExporter(opts.Capturer, notifier, c.logger)
	c.form = editor.New(info, editor.Callbacks{
		OnPlayerInfo: c.handlePlayerInfo,
		OnTheme:      c.handleTheme,
		OnImageError: c.handleImageError,
	}, c.logger)
	return c, nil
}

func (c *Coordinator) ID() string { return c.id }

// Touch marks the session as active.
func (c *Coordinator) Touch() {
	c.lastActive.Store(c.opts.Now().UnixNano())
}

func (c *Coordinator) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Coordinator) SetField(field, value string) (State, error) {
	f, err := domain.ParseField(field)
	if err != nil {
		return c.State(), err
	}
	if err := c.checkOpen(); err != nil {
		return State{}, err
	}
	c.Touch()
	if _, err := c.form.SetField(f, value); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

func (c *Coordinator) SelectRole(role string) (State, error) {
	if err := c.checkOpen(); err != nil {
		return State{}, err
	}
	c.Touch()
	if _, err := c.form.SelectRole(role); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

// SelectTheme switches to a catalog preset. Unknown names leave the
// session untouched and report domain.ErrUnknownTheme.
func (c *Coordinator) SelectTheme(name string) (State, error) {
	if err := c.checkOpen(); err != nil {
		return State{}, err
	}
	c.Touch()
	if _, ok := c.form.SelectTheme(name); !ok {
		return c.State(), domain.ErrUnknownTheme
	}
	return c.State(), nil
}

// SelectImage hands a chosen file to the form for asynchronous decoding.
func (c *Coordinator) SelectImage(filename string, r io.Reader) <-chan error {
	if err := c.checkOpen(); err != nil {
		done := make(chan error, 1)
		done <- err
		close(done)
		return done
	}
	c.Touch()
	return c.form.SelectImage(filename, r)
}

// Export captures the current preview with the current in-game name.
func (c *Coordinator) Export(ctx context.Context, sink card.DownloadSink) card.ExportResult {
	c.Touch()
	c.mu.RLock()
	surface := c.surface
	ign := c.info.InGameName
	c.mu.RUnlock()
	return c.exporter.Export(ctx, surface, ign, sink)
}

func (c *Coordinator) Surface() *card.Surface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface
}

func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Coordinator) stateLocked() State {
	layout := card.BuildLayout(c.info, c.theme)
	if c.surface != nil {
		layout = c.surface.Layout
	}
	return State{
		SessionID:   c.id,
		Version:     c.version,
		PlayerInfo:  c.info,
		Theme:       c.theme,
		Layout:      layout,
		ExportState: c.exporter.State(),
		UpdatedAt:   c.updatedAt,
	}
}

// Toasts lists the notifications that have not expired yet.
func (c *Coordinator) Toasts() []domain.Toast {
	if c.notifier == nil {
		return nil
	}
	return c.notifier.Active()
}

// Subscribe streams session events. Slow subscribers drop events rather
// than stall the editor.
func (c *Coordinator) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	c.subsMu.Lock()
	if c.subs == nil {
		c.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
			c.subsMu.Unlock()
		})
	}
}

// Close destroys the session and ends every subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subs = nil
	c.subsMu.Unlock()
}

func (c *Coordinator) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Coordinator) handlePlayerInfo(info domain.PlayerInfo) {
	c.apply(func() { c.info = info })
}

func (c *Coordinator) handleTheme(theme domain.CardTheme) {
	c.apply(func() { c.theme = theme })
}

func (c *Coordinator) handleImageError(filename string, err error) {
	if c.notifier != nil {
		c.notifier.ImageFailed(filename, err)
	}
}

// apply replaces part of the snapshot pair, re-renders the preview and
// publishes the new state.
func (c *Coordinator) apply(update func()) {
	c.mu.Lock()
	update()
	surface, err := c.opts.Renderer.Render(context.Background(), c.info, c.theme)
	if err != nil {
		c.logger.Error("preview render failed", zap.Error(err))
	} else {
		c.surface = surface
	}
	c.version++
	c.updatedAt = c.opts.Now()
	state := c.stateLocked()
	c.mu.Unlock()

	c.publish(Event{Type: EventSnapshot, State: &state})
}

func (c *Coordinator) publishToast(t domain.Toast) {
	c.publish(Event{Type: EventToast, Toast: &t})
}

func (c *Coordinator) publish(ev Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for id, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.logger.Debug("subscriber lagging, event dropped", zap.Int("subscriber", id), zap.String("type", string(ev.Type)))
		}
	}
}
