package card

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// CardElementID is the id of the card element inside Markup output.
const CardElementID = "player-card"

var markupTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; padding: 0; background: transparent; }
#{{.ID}} { width: {{.W}}px; height: {{.H}}px; border-radius: 16px; overflow: hidden; position: relative;
  display: flex; flex-direction: column; font-family: "Go", "Helvetica Neue", Arial, sans-serif;
  background: {{.Background}}; color: {{.Text}}; }
.header { height: 64px; display: flex; align-items: center; justify-content: space-between; padding: 0 24px; background: {{.Accent}}; }
.header h2 { margin: 0; font-size: 22px; font-weight: 700; white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
.header span { font-size: 13px; font-weight: 700; text-transform: uppercase; }
.body { flex: 1; display: flex; flex-direction: column; align-items: center; padding-top: 24px; }
.portrait { width: 176px; height: 176px; border-radius: 50%; overflow: hidden; box-sizing: border-box;
  border: 4px solid rgba(255,255,255,0.2); background: rgba(0,0,0,0.2); margin-bottom: 20px; }
.portrait img { width: 100%; height: 100%; object-fit: cover; }
.portrait .none { width: 100%; height: 100%; display: flex; align-items: center; justify-content: center;
  background: rgba(0,0,0,0.4); color: rgba(255,255,255,0.6); font-size: 15px; }
h1 { margin: 0; font-size: 28px; font-weight: 700; line-height: 34px; }
p.sub { margin: 0; font-size: 19px; line-height: 26px; }
p.sub span { font-size: 13px; margin-left: 8px; opacity: 0.7; text-transform: uppercase; }
.stats { width: 320px; margin-top: auto; margin-bottom: 24px; border-radius: 8px 8px 0 0; background: {{.Panel}}; }
.grid { display: grid; grid-template-columns: 1fr 1fr; gap: 10px; padding: 12px; }
.cell { display: flex; flex-direction: column; align-items: center; background: rgba(0,0,0,0.2); border-radius: 4px; padding: 8px; }
.cell .label { font-size: 13px; opacity: 0.8; }
.cell .value { font-size: 20px; font-weight: 700; }
</style>
</head>
<body>
<div id="{{.ID}}">
  <div class="header"><h2>{{.Layout.Header.TeamName}}</h2><span>{{.Layout.Header.Label}}</span></div>
  <div class="body">
    <div class="portrait">
      {{- if .Layout.Portrait.Placeholder}}<div class="none">{{.Layout.Portrait.Text}}</div>
      {{- else}}<img src="{{.Source}}" alt="{{.Layout.Portrait.Alt}}">{{end -}}
    </div>
    <h1>{{.Layout.Title}}</h1>
    <p class="sub">"{{.Layout.IGN}}" <span>{{.Layout.Role}}</span></p>
    <div class="stats"><div class="grid">
      {{- range .Layout.Stats}}
      <div class="cell"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>
      {{- end}}
    </div></div>
  </div>
</div>
</body>
</html>`))

type markupParams struct {
	ID         string
	W, H       int
	Layout     Layout
	Source     template.URL
	Background template.CSS
	Text       template.CSS
	Accent     template.CSS
	Panel      template.CSS
}

// Markup renders the layout as a standalone HTML document whose card
// element can be captured by a browser.
func Markup(layout Layout) (string, error) {
	p := layout.Theme.Palette
	background := cssColor(p.BackgroundFrom, 1)
	if p.Gradient() {
		background = fmt.Sprintf("linear-gradient(to bottom, %s, %s)", cssColor(p.BackgroundFrom, 1), cssColor(p.BackgroundTo, 1))
	}

	params := markupParams{
		ID:         CardElementID,
		W:          CardWidth,
		H:          CardHeight,
		Layout:     layout,
		Background: template.CSS(background),
		Text:       template.CSS(cssColor(p.Text, 1)),
		Accent:     template.CSS(cssColor(p.Accent, 1)),
		Panel:      template.CSS(cssColor(p.StatsPanel, p.StatsPanelOpacity)),
	}
	// Only embedded images are trusted as a source; anything else renders a
	// broken image instead of a fetch.
	if src := layout.Portrait.Source; strings.HasPrefix(src, "data:image/") {
		params.Source = template.URL(src)
	}

	var buf bytes.Buffer
	if err := markupTemplate.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render card markup: %w", err)
	}
	return buf.String(), nil
}

func cssColor(hex string, alpha float64) string {
	c := parseHexColor(hex)
	return "rgba(" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B)) + "," +
		strconv.FormatFloat(alpha, 'f', 2, 64) + ")"
}
