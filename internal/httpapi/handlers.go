package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/park285/pubg-card-studio/internal/adapter/cardpresenter"
	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"github.com/park285/pubg-card-studio/internal/studio"
	"go.uber.org/zap"
)

type valueRequest struct {
	Value string `json:"value"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"sessions":  s.registry.Len(),
	})
}

func (s *Server) listThemes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOThemes(domain.Themes()))
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTORoles(domain.Roles()))
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.Create()
	if err != nil {
		if errors.Is(err, studio.ErrTooManySessions) {
			s.respondError(w, http.StatusServiceUnavailable, "too_many_sessions", "too many open sessions", err)
			return
		}
		s.respondError(w, http.StatusInternalServerError, "create_failed", "failed to create session", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, cardpresenter.ToDTOState(c.State()))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOState(c.State()))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, http.StatusNotFound, "session_not_found", "session not found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setField(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	st, err := c.SetField(chi.URLParam(r, "field"), req.Value)
	if err != nil {
		s.respondEditError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOState(st))
}

func (s *Server) selectRole(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	st, err := c.SelectRole(req.Value)
	if err != nil {
		s.respondEditError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOState(st))
}

func (s *Server) selectTheme(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	st, err := c.SelectTheme(req.Value)
	if err != nil {
		s.respondEditError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOState(st))
}

// uploadImage responds only after the decode has finished with the file.
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing_file", "multipart field \"file\" is required", err)
		return
	}
	defer file.Close()

	// the part is spooled locally; file stays open until the decode reports
	if err := <-c.SelectImage(header.Filename, file); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "image_unreadable",
			s.catalog.RenderOr("image.failure.description", map[string]any{"File": header.Filename}, "could not read image"), err)
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOState(c.State()))
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	surface := c.Surface()
	if surface == nil {
		s.respondError(w, http.StatusNotFound, "no_preview", "preview not rendered", nil)
		return
	}
	b, err := surface.PNG()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "preview_failed", "failed to encode preview", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	var download card.Download
	res := c.Export(r.Context(), func(_ context.Context, d card.Download) error {
		download = d
		return nil
	})
	switch {
	case res.Skipped:
		w.WriteHeader(http.StatusNoContent)
	case !res.OK:
		s.respondError(w, http.StatusInternalServerError, "export_failed",
			s.catalog.RenderOr("export.failure.description", nil, "Failed to generate image. Please try again."), nil)
	default:
		w.Header().Set("Content-Type", download.MIME)
		w.Header().Set("Content-Disposition", contentDisposition(download.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(download.PNG); err != nil {
			s.logger.Warn("write export failed", zap.String("session", c.ID()), zap.Error(err))
		}
	}
}

// contentDisposition formats an attachment header per RFC 6266, switching
// to the RFC 2231 extended form for non-ASCII names.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func (s *Server) toasts(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, cardpresenter.ToDTOToasts(c.Toasts()))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*studio.Coordinator, bool) {
	c, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "session_not_found", "session not found", err)
		return nil, false
	}
	return c, true
}

func (s *Server) decodeValue(w http.ResponseWriter, r *http.Request) (valueRequest, bool) {
	var req valueRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_body", `body must be {"value": "..."}`, err)
		return req, false
	}
	return req, true
}

func (s *Server) respondEditError(w http.ResponseWriter, err error) {
	status, code := editErrorStatus(err)
	s.respondError(w, status, code, err.Error(), err)
}

func editErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field"
	case errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest, "unknown_role"
	case errors.Is(err, domain.ErrUnknownTheme):
		return http.StatusNotFound, "unknown_theme"
	case errors.Is(err, studio.ErrClosed):
		return http.StatusGone, "session_closed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
