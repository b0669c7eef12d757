package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"go.uber.org/zap"
)

// BrowserCapturer screenshots the card's HTML markup in headless Chrome,
// the way a DOM-to-image renderer would in the browser.
type BrowserCapturer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger

	closeOnce sync.Once
}

type BrowserOption func(*BrowserCapturer)

func WithTimeout(d time.Duration) BrowserOption {
	return func(c *BrowserCapturer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) BrowserOption {
	return func(c *BrowserCapturer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewBrowserCapturer connects to a running Chrome at remoteURL (its
// devtools websocket or http endpoint). With an empty URL a local headless
// Chrome is started on demand.
func NewBrowserCapturer(remoteURL string, opts ...BrowserOption) *BrowserCapturer {
	c := &BrowserCapturer{timeout: 15 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if strings.TrimSpace(remoteURL) != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), remoteURL)
	} else {
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	}
	return c
}

func (c *BrowserCapturer) Capture(ctx context.Context, surface *card.Surface, scale float64) (image.Image, error) {
	if surface == nil {
		return nil, card.ErrNilSurface
	}
	html, err := card.Markup(surface.Layout)
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	bounds := surface.Bounds()
	var buf []byte
	err = chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(bounds.Dx()), int64(bounds.Dy()), scale, false),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible("#"+card.CardElementID, chromedp.ByQuery),
		chromedp.Screenshot("#"+card.CardElementID, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// Close shuts the browser allocator down.
func (c *BrowserCapturer) Close() error {
	c.closeOnce.Do(func() {
		if c.allocCancel != nil {
			c.allocCancel()
		}
	})
	return nil
}
