package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"innario/internal/api"
	"innario/internal/store"
)

// ensureWardAccess confirms the ward exists and falls inside the caller's
// role scope. It reports whether the handler may continue.
func (s *Server) ensureWardAccess(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) bool {
	if _, err := s.store.GetWard(r.Context(), wardID); err != nil {
		s.writeFailure(w, r, err)
		return false
	}
	visible, err := s.wardVisible(r.Context(), user, wardID)
	if err != nil {
		s.writeFailure(w, r, err)
		return false
	}
	if !visible {
		s.writeError(w, http.StatusForbidden, "ward is not visible to your account")
		return false
	}
	return true
}

// handleWardSelection plans a program for the ward's Sunday. An empty
// body means the next Sunday with every default applied.
func (s *Server) handleWardSelection(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.ensureWardAccess(w, r, user, wardID) {
		return
	}
	var req api.SelectionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.selections.PlanForWard(r.Context(), wardID, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWardReplacement(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.ensureWardAccess(w, r, user, wardID) {
		return
	}
	var req api.ReplacementRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.selections.Replacement(r.Context(), wardID, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWardCandidates(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.ensureWardAccess(w, r, user, wardID) {
		return
	}
	var req api.ReplacementRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.selections.Candidates(r.Context(), wardID, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWardLatest(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.ensureWardAccess(w, r, user, wardID) {
		return
	}
	latest, err := s.selections.Latest(r.Context(), wardID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if latest == nil {
		s.writeError(w, http.StatusNotFound, "ward has no recorded selections")
		return
	}
	s.writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleWardHistory(w http.ResponseWriter, r *http.Request, user *store.User, wardID int64) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.ensureWardAccess(w, r, user, wardID) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.selections.History(r.Context(), wardID, limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}
