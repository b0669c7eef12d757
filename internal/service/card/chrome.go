package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"sync"
	"text/template"

	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Card geometry in natural pixels. Everything is multiplied by the render
// scale before drawing.
const (
	cardRadius      = 16
	headerHeight    = 64
	headerPaddingX  = 24
	portraitTop     = headerHeight + 24
	portraitSize    = 176
	portraitBorder  = 4
	titleTop        = portraitTop + portraitSize + 20
	titleHeight     = 34
	subtitleHeight  = 26
	statsPanelTop   = titleTop + titleHeight + subtitleHeight
	statsPanelWidth = 320
	statsPanelLeft  = (CardWidth - statsPanelWidth) / 2
	statsPanelBot   = CardHeight - 24
	statsPanelRad   = 8
	statsPadding    = 12
	statsGap        = 10
	statCellRadius  = 4
)

type chromeKey struct {
	theme       string
	scale       float64
	placeholder bool
}

var (
	chromeCache   = map[chromeKey]*image.RGBA{}
	chromeCacheMu sync.RWMutex
)

var chromeTemplate = template.Must(template.New("chrome").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.W}}" height="{{.H}}" viewBox="0 0 {{.W}} {{.H}}">
<defs>
<linearGradient id="bg" x1="0" y1="0" x2="0" y2="1">
<stop offset="0" stop-color="{{.BgFrom}}"/>
<stop offset="1" stop-color="{{.BgTo}}"/>
</linearGradient>
</defs>
<rect x="0" y="0" width="{{.W}}" height="{{.H}}" rx="{{.CardR}}" ry="{{.CardR}}" fill="url(#bg)"/>
<path d="M0,{{.CardR}} A{{.CardR}},{{.CardR}} 0 0 1 {{.CardR}},0 H{{.HeaderRight}} A{{.CardR}},{{.CardR}} 0 0 1 {{.W}},{{.CardR}} V{{.HeaderH}} H0 Z" fill="{{.Accent}}"/>
<circle cx="{{.PortraitCX}}" cy="{{.PortraitCY}}" r="{{.PortraitR}}" fill="#000000" fill-opacity="0.2"/>
{{- if .Placeholder}}
<circle cx="{{.PortraitCX}}" cy="{{.PortraitCY}}" r="{{.PortraitInnerR}}" fill="#000000" fill-opacity="0.4"/>
{{- end}}
<circle cx="{{.PortraitCX}}" cy="{{.PortraitCY}}" r="{{.RingR}}" fill="none" stroke="#ffffff" stroke-opacity="0.2" stroke-width="{{.RingW}}"/>
<path d="M{{.PanelL}},{{.PanelTopR}} A{{.PanelR}},{{.PanelR}} 0 0 1 {{.PanelLR}},{{.PanelT}} H{{.PanelRL}} A{{.PanelR}},{{.PanelR}} 0 0 1 {{.PanelRight}},{{.PanelTopR}} V{{.PanelB}} H{{.PanelL}} Z" fill="{{.Panel}}" fill-opacity="{{.PanelOpacity}}"/>
{{- range .Cells}}
<rect x="{{.Min.X}}" y="{{.Min.Y}}" width="{{.Dx}}" height="{{.Dy}}" rx="{{$.CellR}}" ry="{{$.CellR}}" fill="#000000" fill-opacity="0.2"/>
{{- end}}
</svg>`))

type chromeParams struct {
	W, H                   int
	CardR                  int
	BgFrom, BgTo           string
	Accent                 string
	HeaderRight, HeaderH   int
	PortraitCX, PortraitCY int
	PortraitR              int
	PortraitInnerR         int
	RingR, RingW           int
	Placeholder            bool
	PanelL, PanelRight     int
	PanelT, PanelB         int
	PanelR                 int
	PanelTopR              int
	PanelLR, PanelRL       int
	Panel                  string
	PanelOpacity           string
	Cells                  []image.Rectangle
	CellR                  int
}

func newChromeParams(palette domain.Palette, placeholder bool) chromeParams {
	panelRight := statsPanelLeft + statsPanelWidth
	return chromeParams{
		W:              CardWidth,
		H:              CardHeight,
		CardR:          cardRadius,
		BgFrom:         palette.BackgroundFrom,
		BgTo:           palette.BackgroundTo,
		Accent:         palette.Accent,
		HeaderRight:    CardWidth - cardRadius,
		HeaderH:        headerHeight,
		PortraitCX:     CardWidth / 2,
		PortraitCY:     portraitTop + portraitSize/2,
		PortraitR:      portraitSize / 2,
		PortraitInnerR: portraitSize/2 - portraitBorder,
		RingR:          portraitSize/2 - portraitBorder/2,
		RingW:          portraitBorder,
		Placeholder:    placeholder,
		PanelL:         statsPanelLeft,
		PanelRight:     panelRight,
		PanelT:         statsPanelTop,
		PanelB:         statsPanelBot,
		PanelR:         statsPanelRad,
		PanelTopR:      statsPanelTop + statsPanelRad,
		PanelLR:        statsPanelLeft + statsPanelRad,
		PanelRL:        panelRight - statsPanelRad,
		Panel:          palette.StatsPanel,
		PanelOpacity:   strconv.FormatFloat(palette.StatsPanelOpacity, 'f', 2, 64),
		Cells:          statCellRects(),
		CellR:          statCellRadius,
	}
}

// statCellRects returns the four stat cells in reading order, in natural
// pixels.
func statCellRects() []image.Rectangle {
	innerW := statsPanelWidth - statsPadding*2
	innerH := statsPanelBot - statsPanelTop - statsPadding*2
	cellW := (innerW - statsGap) / 2
	cellH := (innerH - statsGap) / 2
	left := statsPanelLeft + statsPadding
	top := statsPanelTop + statsPadding

	rects := make([]image.Rectangle, 0, 4)
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			x := left + col*(cellW+statsGap)
			y := top + row*(cellH+statsGap)
			rects = append(rects, image.Rect(x, y, x+cellW, y+cellH))
		}
	}
	return rects
}

func chromeSVG(palette domain.Palette, placeholder bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := chromeTemplate.Execute(&buf, newChromeParams(palette, placeholder)); err != nil {
		return nil, fmt.Errorf("render chrome svg: %w", err)
	}
	return buf.Bytes(), nil
}

// renderChrome rasterises the card frame for a theme at the given scale.
// Results are cached and must be copied before drawing on top of them.
func renderChrome(theme domain.CardTheme, scale float64, placeholder bool) (*image.RGBA, error) {
	key := chromeKey{theme: theme.Name, scale: scale, placeholder: placeholder}

	chromeCacheMu.RLock()
	if img, ok := chromeCache[key]; ok {
		chromeCacheMu.RUnlock()
		return img, nil
	}
	chromeCacheMu.RUnlock()

	data, err := chromeSVG(theme.Palette, placeholder)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse chrome svg: %w", err)
	}

	w := scaled(CardWidth, scale)
	h := scaled(CardHeight, scale)
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	chromeCacheMu.Lock()
	chromeCache[key] = img
	chromeCacheMu.Unlock()

	return img, nil
}

func scaled(v int, scale float64) int {
	return int(float64(v)*scale + 0.5)
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(scaled(r.Min.X, scale), scaled(r.Min.Y, scale), scaled(r.Max.X, scale), scaled(r.Max.Y, scale))
}
