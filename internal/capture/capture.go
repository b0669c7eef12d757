package capture

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/pubg-card-studio/internal/service/card"
	"go.uber.org/zap"
)

const (
	BackendNative   = "native"
	BackendChromedp = "chromedp"
)

var ErrUnknownBackend = errors.New("unknown capture backend")

// Options selects and configures a capture backend.
type Options struct {
	Backend   string
	ChromeURL string
	Timeout   time.Duration
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// New builds the configured capturer. The returned close func releases
// browser resources and is safe to call when nothing was allocated.
func New(opts Options, logger *zap.Logger) (card.Capturer, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNative:
		return card.NativeCapturer{}, noopCloser{}.Close, nil
	case BackendChromedp:
		c := NewBrowserCapturer(opts.ChromeURL, WithTimeout(opts.Timeout), WithLogger(logger))
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}
