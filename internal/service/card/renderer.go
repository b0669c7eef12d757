package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	fontassets "github.com/park285/pubg-card-studio/internal/assets/fonts"
	"github.com/park285/pubg-card-studio/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var ErrNilSurface = errors.New("surface is nil")

// CardRenderer turns a snapshot pair into a rendered surface.
type CardRenderer interface {
	Render(ctx context.Context, info domain.PlayerInfo, theme domain.CardTheme) (*Surface, error)
	RenderAt(ctx context.Context, layout Layout, scale float64) (*image.RGBA, error)
}

// Surface is the stable handle to a rendered card. It keeps the snapshot it
// was drawn from so capture can redraw it at any scale.
type Surface struct {
	Info   domain.PlayerInfo
	Theme  domain.CardTheme
	Layout Layout

	image    *image.RGBA
	renderer CardRenderer
}

// Bounds is the natural pixel footprint of the card.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, CardWidth, CardHeight)
}

// Image returns the natural-size raster.
func (s *Surface) Image() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.image
}

// RenderAt redraws the card at scale times its natural size.
func (s *Surface) RenderAt(ctx context.Context, scale float64) (*image.RGBA, error) {
	if s == nil {
		return nil, ErrNilSurface
	}
	if scale == 1 && s.image != nil {
		return s.image, nil
	}
	return s.renderer.RenderAt(ctx, s.Layout, scale)
}

// PNG encodes the natural-size raster.
func (s *Surface) PNG() ([]byte, error) {
	if s == nil || s.image == nil {
		return nil, ErrNilSurface
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type svgCardRenderer struct {
	logger *zap.Logger
}

func NewSVGCardRenderer(logger *zap.Logger) CardRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &svgCardRenderer{logger: logger}
}

func (r *svgCardRenderer) Render(ctx context.Context, info domain.PlayerInfo, theme domain.CardTheme) (*Surface, error) {
	layout := BuildLayout(info, theme)
	img, err := r.RenderAt(ctx, layout, 1)
	if err != nil {
		return nil, err
	}
	return &Surface{Info: info, Theme: theme, Layout: layout, image: img, renderer: r}, nil
}

func (r *svgCardRenderer) RenderAt(ctx context.Context, layout Layout, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	chrome, err := renderChrome(layout.Theme, scale, layout.Portrait.Placeholder)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(chrome.Bounds())
	imagedraw.Draw(img, img.Bounds(), chrome, image.Point{}, imagedraw.Src)

	if !layout.Portrait.Placeholder {
		r.drawPortrait(img, layout.Portrait.Source, scale)
	}

	if err := drawCardText(img, layout, scale); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return img, nil
}

func (r *svgCardRenderer) drawPortrait(img *image.RGBA, ref string, scale float64) {
	inner := portraitSize - portraitBorder*2
	rect := image.Rect(
		scaled(CardWidth/2-inner/2, scale),
		scaled(portraitTop+portraitBorder, scale),
		scaled(CardWidth/2+inner/2, scale),
		scaled(portraitTop+portraitBorder+inner, scale),
	)
	tile, err := portraits.tile(ref, rect.Dx())
	if err != nil || tile == nil {
		// A broken or oversized image still renders as an empty portrait frame.
		r.logger.Debug("portrait unavailable", zap.Error(err))
		return
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+tile.Bounds().Dx(), rect.Min.Y+tile.Bounds().Dy()), tile, image.Point{}, imagedraw.Over)
}

type textStyle struct {
	weight  fontassets.Weight
	size    float64
	opacity float64
}

var (
	teamStyle        = textStyle{weight: fontassets.Bold, size: 22, opacity: 1}
	labelStyle       = textStyle{weight: fontassets.Bold, size: 13, opacity: 1}
	titleStyle       = textStyle{weight: fontassets.Bold, size: 28, opacity: 1}
	ignStyle         = textStyle{weight: fontassets.Regular, size: 19, opacity: 1}
	roleStyle        = textStyle{weight: fontassets.Regular, size: 13, opacity: 0.7}
	statLabelStyle   = textStyle{weight: fontassets.Regular, size: 13, opacity: 0.8}
	statValueStyle   = textStyle{weight: fontassets.Bold, size: 20, opacity: 1}
	placeholderStyle = textStyle{weight: fontassets.Regular, size: 15, opacity: 0.6}
)

func (s textStyle) face(scale float64) (font.Face, error) {
	return fontassets.Face(s.weight, s.size*scale)
}

func drawCardText(img *image.RGBA, layout Layout, scale float64) error {
	textColor := parseHexColor(layout.Theme.Palette.Text)

	// Header: team name on the left, product label on the right.
	header := image.Rect(0, 0, scaled(CardWidth, scale), scaled(headerHeight, scale))
	pad := scaled(headerPaddingX, scale)
	labelFace, err := labelStyle.face(scale)
	if err != nil {
		return err
	}
	labelW := measure(labelFace, layout.Header.Label)
	drawAligned(img, labelFace, header, layout.Header.Label, header.Max.X-pad-labelW, withOpacity(textColor, labelStyle.opacity))

	teamFace, err := teamStyle.face(scale)
	if err != nil {
		return err
	}
	teamMax := header.Dx() - pad*3 - labelW
	team := truncateWithEllipsis(teamFace, layout.Header.TeamName, teamMax)
	drawAligned(img, teamFace, header, team, header.Min.X+pad, withOpacity(textColor, teamStyle.opacity))

	if layout.Portrait.Placeholder {
		face, err := placeholderStyle.face(scale)
		if err != nil {
			return err
		}
		rect := scaleRect(image.Rect(CardWidth/2-portraitSize/2, portraitTop, CardWidth/2+portraitSize/2, portraitTop+portraitSize), scale)
		drawCenteredString(img, face, rect, layout.Portrait.Text, withOpacity(color.NRGBA{255, 255, 255, 255}, placeholderStyle.opacity))
	}

	contentW := scaled(CardWidth-headerPaddingX*2, scale)

	titleFace, err := titleStyle.face(scale)
	if err != nil {
		return err
	}
	titleRect := scaleRect(image.Rect(0, titleTop, CardWidth, titleTop+titleHeight), scale)
	drawCenteredString(img, titleFace, titleRect, truncateWithEllipsis(titleFace, layout.Title, contentW), withOpacity(textColor, titleStyle.opacity))

	if err := drawSubtitle(img, layout, scale, textColor, contentW); err != nil {
		return err
	}

	labelFace, err = statLabelStyle.face(scale)
	if err != nil {
		return err
	}
	valueFace, err := statValueStyle.face(scale)
	if err != nil {
		return err
	}
	for i, cellRect := range statCellRects() {
		cell := layout.Stats[i]
		rect := scaleRect(cellRect, scale)
		half := rect.Dy() * 2 / 5
		labelRect := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+half)
		valueRect := image.Rect(rect.Min.X, rect.Min.Y+half, rect.Max.X, rect.Max.Y)
		inner := rect.Dx() - scaled(8, scale)
		drawCenteredString(img, labelFace, labelRect, cell.Label, withOpacity(textColor, statLabelStyle.opacity))
		drawCenteredString(img, valueFace, valueRect, truncateWithEllipsis(valueFace, cell.Value, inner), withOpacity(textColor, statValueStyle.opacity))
	}
	return nil
}

// drawSubtitle lays the quoted in-game name and the role out as one
// centred line; the role run is smaller and dimmer.
func drawSubtitle(img *image.RGBA, layout Layout, scale float64, textColor color.NRGBA, maxW int) error {
	ignFace, err := ignStyle.face(scale)
	if err != nil {
		return err
	}
	roleFace, err := roleStyle.face(scale)
	if err != nil {
		return err
	}

	gap := scaled(8, scale)
	role := layout.Role
	roleW := measure(roleFace, role)
	ign := truncateWithEllipsis(ignFace, `"`+layout.IGN+`"`, maxW-roleW-gap)
	ignW := measure(ignFace, ign)
	total := ignW
	if role != "" {
		total += gap + roleW
	}

	rect := scaleRect(image.Rect(0, titleTop+titleHeight, CardWidth, titleTop+titleHeight+subtitleHeight), scale)
	x := rect.Min.X + (rect.Dx()-total)/2
	baseline := baselineFor(ignFace, rect)
	drawString(img, ignFace, ign, x, baseline, withOpacity(textColor, ignStyle.opacity))
	if role != "" {
		drawString(img, roleFace, role, x+ignW+gap, baseline, withOpacity(textColor, roleStyle.opacity))
	}
	return nil
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Round()
}

func baselineFor(face font.Face, rect image.Rectangle) int {
	metrics := face.Metrics()
	return rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
}

func drawString(dst imagedraw.Image, face font.Face, text string, x, baseline int, clr color.Color) {
	if text == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	drawer.DrawString(text)
}

func drawAligned(dst imagedraw.Image, face font.Face, rect image.Rectangle, text string, x int, clr color.Color) {
	drawString(dst, face, strings.TrimSpace(text), x, baselineFor(face, rect), clr)
}

func drawCenteredString(dst imagedraw.Image, face font.Face, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	width := measure(face, text)
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	drawString(dst, face, text, x, baselineFor(face, rect), clr)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	if measure(face, trimmed) <= maxWidth {
		return trimmed
	}

	ellipsis := "..."
	if measure(face, ellipsis) > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if measure(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// parseHexColor reads #rgb or #rrggbb; anything else is opaque white.
func parseHexColor(s string) color.NRGBA {
	fallback := color.NRGBA{255, 255, 255, 255}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
