package card

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/park285/pubg-card-studio/internal/domain"
)

func solidPNGDataURI(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return EncodePNGDataURI(buf.Bytes())
}

func TestBuildLayoutSeedScenario(t *testing.T) {
	l := BuildLayout(domain.DefaultPlayerInfo(), domain.DefaultTheme())

	if l.Header.TeamName != "Phoenix Force" || l.Header.Label != "PUBG ESPORTS" {
		t.Fatalf("header: %+v", l.Header)
	}
	if l.Title != "John Doe" {
		t.Fatalf("title: %q", l.Title)
	}
	if got := l.Subtitle(); got != `"WraithKiller" FRAGGER` {
		t.Fatalf("subtitle: %q", got)
	}
	want := []string{"2.8", "345", "42", "38%"}
	labels := []string{"K/D Ratio", "Matches", "Wins", "Headshot %"}
	for i, cell := range l.Stats {
		if cell.Value != want[i] || cell.Label != labels[i] {
			t.Fatalf("stat %d: %+v", i, cell)
		}
	}
	if !l.Portrait.Placeholder || l.Portrait.Text != "No Image" {
		t.Fatalf("expected placeholder portrait: %+v", l.Portrait)
	}
	if l.Theme.Name != "Dark" {
		t.Fatalf("theme: %s", l.Theme.Name)
	}
}

func TestBuildLayoutWithImage(t *testing.T) {
	info := domain.DefaultPlayerInfo().WithProfileImage("data:image/png;base64,AAAA")
	l := BuildLayout(info, domain.DefaultTheme())
	if l.Portrait.Placeholder {
		t.Fatalf("unexpected placeholder")
	}
	if l.Portrait.Source != info.ProfileImage || l.Portrait.Alt != "John Doe" {
		t.Fatalf("portrait: %+v", l.Portrait)
	}
}

func TestBuildLayoutIsDeterministic(t *testing.T) {
	info := domain.DefaultPlayerInfo()
	theme, _ := domain.ThemeByName("Toxic")
	if BuildLayout(info, theme) != BuildLayout(info, theme) {
		t.Fatalf("layout differs between calls")
	}
}

func TestRenderNaturalFootprint(t *testing.T) {
	r := NewSVGCardRenderer(nil)
	for _, theme := range domain.Themes() {
		s, err := r.Render(context.Background(), domain.DefaultPlayerInfo(), theme)
		if err != nil {
			t.Fatalf("Render %s: %v", theme.Name, err)
		}
		b := s.Image().Bounds()
		if b.Dx() != CardWidth || b.Dy() != CardHeight {
			t.Fatalf("%s: unexpected bounds %v", theme.Name, b)
		}
		if s.Bounds() != b {
			t.Fatalf("%s: surface bounds mismatch", theme.Name)
		}
	}
}

func TestRenderPaintsHeaderAndTransparentCorners(t *testing.T) {
	r := NewSVGCardRenderer(nil)
	s, err := r.Render(context.Background(), domain.DefaultPlayerInfo(), domain.DefaultTheme())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := s.Image()

	if a := img.RGBAAt(0, 0).A; a > 64 {
		t.Fatalf("corner should be transparent, alpha=%d", a)
	}
	accent := parseHexColor(domain.DefaultTheme().Palette.Accent)
	px := img.RGBAAt(CardWidth/2, 6)
	if absDiff(px.R, accent.R) > 8 || absDiff(px.G, accent.G) > 8 || absDiff(px.B, accent.B) > 8 {
		t.Fatalf("header pixel %v does not match accent %v", px, accent)
	}
}

func TestRenderPortraitImageVersusPlaceholder(t *testing.T) {
	r := NewSVGCardRenderer(nil)
	red := solidPNGDataURI(t, 40, 30, color.RGBA{R: 255, A: 255})

	withImage, err := r.Render(context.Background(), domain.DefaultPlayerInfo().WithProfileImage(red), domain.DefaultTheme())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	center := withImage.Image().RGBAAt(CardWidth/2, portraitTop+portraitSize/2)
	if center.R < 200 || center.G > 60 || center.B > 60 {
		t.Fatalf("portrait centre should be red, got %v", center)
	}

	placeholder, err := r.Render(context.Background(), domain.DefaultPlayerInfo(), domain.DefaultTheme())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	top := placeholder.Image().RGBAAt(CardWidth/2, portraitTop+12)
	if top.R > 100 {
		t.Fatalf("placeholder portrait should be dark, got %v", top)
	}
}

func TestRenderBrokenImageDoesNotFail(t *testing.T) {
	r := NewSVGCardRenderer(nil)
	info := domain.DefaultPlayerInfo().WithProfileImage("data:image/png;base64,bm90IGFuIGltYWdl")
	if _, err := r.Render(context.Background(), info, domain.DefaultTheme()); err != nil {
		t.Fatalf("broken image should render an empty frame: %v", err)
	}
}

func TestRenderAtScalesFootprint(t *testing.T) {
	r := NewSVGCardRenderer(nil)
	s, err := r.Render(context.Background(), domain.DefaultPlayerInfo(), domain.DefaultTheme())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := s.RenderAt(context.Background(), 2)
	if err != nil {
		t.Fatalf("RenderAt: %v", err)
	}
	if img.Bounds().Dx() != 2*CardWidth || img.Bounds().Dy() != 2*CardHeight {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSVGCardRenderer(nil).Render(ctx, domain.DefaultPlayerInfo(), domain.DefaultTheme()); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestChromeSVGUsesPalette(t *testing.T) {
	fire, _ := domain.ThemeByName("Fire")
	svg, err := chromeSVG(fire.Palette, true)
	if err != nil {
		t.Fatalf("chromeSVG: %v", err)
	}
	s := string(svg)
	for _, want := range []string{fire.Palette.BackgroundFrom, fire.Palette.BackgroundTo, fire.Palette.Accent, `fill-opacity="0.30"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("chrome svg missing %q", want)
		}
	}
	if strings.Count(s, "<rect") != 5 {
		t.Fatalf("expected card rect plus four stat cells")
	}
}

func TestStatCellRectsFitPanel(t *testing.T) {
	panel := image.Rect(statsPanelLeft, statsPanelTop, statsPanelLeft+statsPanelWidth, statsPanelBot)
	rects := statCellRects()
	if len(rects) != 4 {
		t.Fatalf("expected 4 cells")
	}
	for i, r := range rects {
		if !r.In(panel) {
			t.Fatalf("cell %d %v outside panel %v", i, r, panel)
		}
		for j := i + 1; j < len(rects); j++ {
			if r.Overlaps(rects[j]) {
				t.Fatalf("cells %d and %d overlap", i, j)
			}
		}
	}
}

func TestCoverCrop(t *testing.T) {
	got := coverCrop(image.Rect(0, 0, 400, 200), 100, 100)
	if got != image.Rect(100, 0, 300, 200) {
		t.Fatalf("landscape crop: %v", got)
	}
	got = coverCrop(image.Rect(0, 0, 100, 300), 50, 50)
	if got != image.Rect(0, 100, 100, 200) {
		t.Fatalf("portrait crop: %v", got)
	}
}

func TestParseHexColor(t *testing.T) {
	if c := parseHexColor("#f2a900"); c != (color.NRGBA{0xf2, 0xa9, 0x00, 0xff}) {
		t.Fatalf("parse: %v", c)
	}
	if c := parseHexColor("#fff"); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("short form: %v", c)
	}
	if c := parseHexColor("bogus"); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("fallback: %v", c)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
