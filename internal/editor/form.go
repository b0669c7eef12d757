package editor

import (
	"sync"

	"github.com/park285/pubg-card-studio/internal/domain"
	"go.uber.org/zap"
)

// Callbacks are injected by the page coordinator. OnPlayerInfo and OnTheme
// receive full snapshots; OnImageError reports a failed image decode.
type Callbacks struct {
	OnPlayerInfo func(domain.PlayerInfo)
	OnTheme      func(domain.CardTheme)
	OnImageError func(filename string, err error)
}

// Form owns the authoritative PlayerInfo snapshot. Every edit merges one
// field into the stored snapshot, stores it and emits exactly that value,
// all under one lock, so an emission never reads a stale base.
type Form struct {
	mu     sync.Mutex
	info   domain.PlayerInfo
	cb     Callbacks
	logger *zap.Logger
}

func New(initial domain.PlayerInfo, cb Callbacks, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{info: initial, cb: cb, logger: logger}
}

// Snapshot returns the currently stored snapshot.
func (f *Form) Snapshot() domain.PlayerInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

// SetField merges a text edit and emits the merged snapshot.
func (f *Form) SetField(field domain.Field, value string) (domain.PlayerInfo, error) {
	return f.apply(func(p domain.PlayerInfo) (domain.PlayerInfo, error) {
		return p.With(field, value)
	})
}

// SelectRole merges a role chosen from the role catalog.
func (f *Form) SelectRole(role string) (domain.PlayerInfo, error) {
	canonical, ok := domain.LookupRole(role)
	if !ok {
		return f.Snapshot(), domain.ErrUnknownRole
	}
	return f.apply(func(p domain.PlayerInfo) (domain.PlayerInfo, error) {
		return p.With(domain.FieldRole, canonical)
	})
}

// SelectTheme emits the named preset. Unknown names are a no-op.
func (f *Form) SelectTheme(name string) (domain.CardTheme, bool) {
	theme, ok := domain.ThemeByName(name)
	if !ok {
		f.logger.Debug("theme not in catalog", zap.String("theme", name))
		return domain.CardTheme{}, false
	}
	if f.cb.OnTheme != nil {
		f.cb.OnTheme(theme)
	}
	return theme, true
}

func (f *Form) apply(merge func(domain.PlayerInfo) (domain.PlayerInfo, error)) (domain.PlayerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := merge(f.info)
	if err != nil {
		return f.info, err
	}
	f.info = next
	if f.cb.OnPlayerInfo != nil {
		f.cb.OnPlayerInfo(next)
	}
	return next, nil
}
