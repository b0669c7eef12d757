package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/park285/pubg-card-studio/internal/domain"
)

//go:embed static/index.html
var staticFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

type indexParams struct {
	Title   string
	Tagline string
	Footer  string
	Roles   []domain.RoleOption
	Themes  []domain.CardTheme
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	params := indexParams{
		Title:   s.catalog.RenderOr("app.title", nil, "PUBG Esports Player Card Creator"),
		Tagline: s.catalog.RenderOr("app.tagline", nil, ""),
		Footer:  s.catalog.RenderOr("app.footer", nil, ""),
		Roles:   domain.Roles(),
		Themes:  domain.Themes(),
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, params); err != nil {
		s.respondError(w, http.StatusInternalServerError, "page_failed", "failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
