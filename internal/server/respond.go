package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"innario/internal/logging"
	"innario/internal/selection"
	"innario/internal/store"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps domain errors onto HTTP statuses. Anything without a
// mapping is reported as a 500 with the detail kept in the log.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, selection.ErrInvalidContext):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, selection.ErrInsufficientHymns):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.log().Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
