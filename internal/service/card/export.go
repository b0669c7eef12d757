package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// ExportScale is the upscaling factor applied when capturing a surface.
const ExportScale = 2

const (
	defaultExportName = "player"
	exportSuffix      = "_card.png"
)

// Capturer rasterises a rendered surface at a scale factor with an unset
// background.
type Capturer interface {
	Capture(ctx context.Context, surface *Surface, scale float64) (image.Image, error)
}

// NativeCapturer redraws the surface with the card renderer.
type NativeCapturer struct{}

func (NativeCapturer) Capture(ctx context.Context, surface *Surface, scale float64) (image.Image, error) {
	return surface.RenderAt(ctx, scale)
}

// Download is what the save-as sink receives.
type Download struct {
	Filename string
	MIME     string
	DataURI  string
	PNG      []byte
	Width    int
	Height   int
}

// DownloadSink performs the "save as file" step.
type DownloadSink func(ctx context.Context, d Download) error

// Notifier surfaces the outcome of an export to the user.
type Notifier interface {
	ExportSucceeded(filename string)
	ExportFailed()
}

type ExportState int32

const (
	ExportIdle ExportState = iota
	ExportCapturing
	ExportDone
	ExportFailed
)

func (s ExportState) String() string {
	switch s {
	case ExportCapturing:
		return "capturing"
	case ExportDone:
		return "done"
	case ExportFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ExportResult is returned instead of an error: export never fails past
// its own boundary.
type ExportResult struct {
	OK       bool
	Skipped  bool
	Download *Download
	Err      error
}

// Exporter converts a rendered surface into a downloadable PNG. Overlapping
// exports are allowed; State reports the most recent transition.
type Exporter struct {
	capturer Capturer
	notifier Notifier
	logger   *zap.Logger
	state    atomic.Int32
}

func NewExporter(capturer Capturer, notifier Notifier, logger *zap.Logger) *Exporter {
	if capturer == nil {
		capturer = NativeCapturer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{capturer: capturer, notifier: notifier, logger: logger}
}

func (e *Exporter) State() ExportState {
	return ExportState(e.state.Load())
}

// ExportFilename is `{inGameName|"player"}_card.png`.
func ExportFilename(inGameName string) string {
	name := inGameName
	if strings.TrimSpace(name) == "" {
		name = defaultExportName
	}
	return name + exportSuffix
}

// Export captures surface at ExportScale, encodes it as a PNG data URI and
// hands it to sink. A nil surface is a silent no-op.
func (e *Exporter) Export(ctx context.Context, surface *Surface, inGameName string, sink DownloadSink) (res ExportResult) {
	if surface == nil {
		return ExportResult{Skipped: true}
	}
	e.state.Store(int32(ExportCapturing))

	defer func() {
		if r := recover(); r != nil {
			res = e.fail(fmt.Errorf("export panic: %v", r), inGameName)
		}
	}()

	download, err := e.capture(ctx, surface, inGameName)
	if err != nil {
		return e.fail(err, inGameName)
	}
	if sink != nil {
		if err := sink(ctx, *download); err != nil {
			return e.fail(fmt.Errorf("save download: %w", err), inGameName)
		}
	}

	e.state.Store(int32(ExportDone))
	e.logger.Info("card exported",
		zap.String("file", download.Filename),
		zap.Int("width", download.Width),
		zap.Int("height", download.Height),
		zap.Int("bytes", len(download.PNG)),
	)
	if e.notifier != nil {
		e.notifier.ExportSucceeded(download.Filename)
	}
	return ExportResult{OK: true, Download: download}
}

func (e *Exporter) capture(ctx context.Context, surface *Surface, inGameName string) (*Download, error) {
	img, err := e.capturer.Capture(ctx, surface, ExportScale)
	if err != nil {
		return nil, fmt.Errorf("capture surface: %w", err)
	}
	if img == nil {
		return nil, errors.New("capture returned no image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return &Download{
		Filename: ExportFilename(inGameName),
		MIME:     "image/png",
		DataURI:  EncodePNGDataURI(buf.Bytes()),
		PNG:      buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

func (e *Exporter) fail(err error, inGameName string) ExportResult {
	e.state.Store(int32(ExportFailed))
	e.logger.Error("error generating image",
		zap.String("ign", inGameName),
		zap.Error(err),
	)
	if e.notifier != nil {
		e.notifier.ExportFailed()
	}
	return ExportResult{Err: err}
}
