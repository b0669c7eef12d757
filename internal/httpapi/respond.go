package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/park285/pubg-card-studio/pkg/carddto"
	"go.uber.org/zap"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		fields := []zap.Field{zap.Int("status", status), zap.String("code", code), zap.Error(err)}
		if status >= http.StatusInternalServerError {
			s.logger.Error(message, fields...)
		} else {
			s.logger.Debug(message, fields...)
		}
	}
	s.respondJSON(w, status, carddto.DomainError{Code: code, Message: message})
}
