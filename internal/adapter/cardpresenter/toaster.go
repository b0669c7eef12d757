package cardpresenter

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/park285/pubg-card-studio/internal/msgcat"
	"github.com/park285/pubg-card-studio/internal/studio"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultToastLimit = 3
)

// Fallback copy when the catalog has no entry.
const (
	fallbackSuccessTitle = "Success!"
	fallbackSuccessDesc  = "Player card downloaded successfully."
	fallbackFailureTitle = "Error"
	fallbackFailureDesc  = "Failed to generate image. Please try again."
	fallbackImageTitle   = "Error"
	fallbackImageDesc    = "Could not read the selected image."
)

type ToasterConfig struct {
	TTL   time.Duration
	Limit int
	Now   func() time.Time
}

// Toaster turns export and image outcomes into transient notifications.
// It keeps at most Limit unexpired toasts, newest first.
type Toaster struct {
	catalog *msgcat.Catalog
	publish func(domain.Toast)
	cfg     ToasterConfig

	mu     sync.Mutex
	toasts []domain.Toast
}

var _ studio.Notifier = (*Toaster)(nil)

func NewToaster(catalog *msgcat.Catalog, publish func(domain.Toast), cfg ToasterConfig) *Toaster {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultToastTTL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultToastLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Toaster{catalog: catalog, publish: publish, cfg: cfg}
}

// NewToasterFactory adapts NewToaster to the per-session notifier hook.
func NewToasterFactory(catalog *msgcat.Catalog, cfg ToasterConfig) studio.NotifierFactory {
	return func(publish func(domain.Toast)) studio.Notifier {
		return NewToaster(catalog, publish, cfg)
	}
}

func (t *Toaster) ExportSucceeded(filename string) {
	data := map[string]any{"File": filename}
	t.show(
		t.catalog.RenderOr("export.success.title", data, fallbackSuccessTitle),
		t.catalog.RenderOr("export.success.description", data, fallbackSuccessDesc),
		domain.ToastDefault,
	)
}

func (t *Toaster) ExportFailed() {
	t.show(
		t.catalog.RenderOr("export.failure.title", nil, fallbackFailureTitle),
		t.catalog.RenderOr("export.failure.description", nil, fallbackFailureDesc),
		domain.ToastDestructive,
	)
}

func (t *Toaster) ImageFailed(filename string, err error) {
	data := map[string]any{"File": filename}
	if err != nil {
		data["Error"] = err.Error()
	}
	t.show(
		t.catalog.RenderOr("image.failure.title", data, fallbackImageTitle),
		t.catalog.RenderOr("image.failure.description", data, fallbackImageDesc),
		domain.ToastDestructive,
	)
}

// Active lists unexpired toasts, newest first.
func (t *Toaster) Active() []domain.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(t.cfg.Now())
	return append([]domain.Toast(nil), t.toasts...)
}

func (t *Toaster) show(title, description string, variant domain.ToastVariant) {
	now := t.cfg.Now()
	toast := domain.Toast{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   now,
		ExpiresAt:   now.Add(t.cfg.TTL),
	}

	t.mu.Lock()
	t.pruneLocked(now)
	t.toasts = append([]domain.Toast{toast}, t.toasts...)
	if len(t.toasts) > t.cfg.Limit {
		t.toasts = t.toasts[:t.cfg.Limit]
	}
	t.mu.Unlock()

	if t.publish != nil {
		t.publish(toast)
	}
}

func (t *Toaster) pruneLocked(now time.Time) {
	kept := t.toasts[:0]
	for _, ts := range t.toasts {
		if !ts.Expired(now) {
			kept = append(kept, ts)
		}
	}
	t.toasts = kept
}
