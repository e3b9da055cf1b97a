package server

import (
	"net/http"
	"strconv"
	"strings"

	"innario/internal/api"
	"innario/internal/auth"
	"innario/internal/store"
)

// pathID parses the numeric head of a subtree path and returns the
// remaining segments.
func pathID(path, prefix string) (int64, []string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		return 0, nil, false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, false
	}
	tail := parts[1:]
	if len(tail) == 1 && tail[0] == "" {
		tail = nil
	}
	return id, tail, true
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request, user *store.User) {
	switch r.Method {
	case http.MethodGet:
		areas, err := s.store.ListAreas(r.Context())
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.AreaListResponse{Areas: api.FromAreas(areas)})
	case http.MethodPost:
		if !s.requireRole(w, user, auth.RoleSuperadmin) {
			return
		}
		var req api.AreaRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		area, err := s.store.CreateArea(r.Context(), req.Name)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.FromArea(area))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAreaItem(w http.ResponseWriter, r *http.Request, user *store.User) {
	id, tail, ok := pathID(r.URL.Path, "/api/v1/areas/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(tail) == 1 && tail[0] == "stakes" {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if _, err := s.store.GetArea(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		stakes, err := s.store.ListStakes(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.StakeListResponse{Stakes: api.FromStakes(stakes)})
		return
	}
	if len(tail) != 0 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		area, err := s.store.GetArea(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromArea(area))
	case http.MethodPut:
		if !s.requireRole(w, user, auth.RoleSuperadmin) {
			return
		}
		var req api.AreaRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		area, err := s.store.RenameArea(r.Context(), id, req.Name)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromArea(area))
	case http.MethodDelete:
		if !s.requireRole(w, user, auth.RoleSuperadmin) {
			return
		}
		if err := s.store.DeleteArea(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStakes(w http.ResponseWriter, r *http.Request, user *store.User) {
	switch r.Method {
	case http.MethodGet:
		// An explicit area filter wins; otherwise area managers see
		// their own area and everyone else sees the full list.
		areaID, _ := strconv.ParseInt(r.URL.Query().Get("area_id"), 10, 64)
		if areaID == 0 && user.Role == auth.RoleAreaManager {
			areaID = user.AreaID
		}
		stakes, err := s.store.ListStakes(r.Context(), areaID)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.StakeListResponse{Stakes: api.FromStakes(stakes)})
	case http.MethodPost:
		if !s.requireRole(w, user, auth.RoleAreaManager) {
			return
		}
		var req api.StakeRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var areaID int64
		if req.AreaID != nil {
			areaID = *req.AreaID
		}
		if user.Role == auth.RoleAreaManager {
			if areaID == 0 {
				areaID = user.AreaID
			} else if areaID != user.AreaID {
				s.writeError(w, http.StatusForbidden, "you can only create stakes in your assigned area")
				return
			}
		}
		stake, err := s.store.CreateStake(r.Context(), req.Name, areaID)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.FromStake(stake))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStakeItem(w http.ResponseWriter, r *http.Request, user *store.User) {
	id, tail, ok := pathID(r.URL.Path, "/api/v1/stakes/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(tail) == 1 && tail[0] == "wards" {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if _, err := s.store.GetStake(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		wards, err := s.store.ListWardsByStake(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.WardListResponse{Wards: api.FromWards(wards)})
		return
	}
	if len(tail) != 0 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		stake, err := s.store.GetStake(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromStake(stake))
	case http.MethodPut:
		if !s.requireRole(w, user, auth.RoleAreaManager) {
			return
		}
		stake, err := s.store.GetStake(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		if user.Role == auth.RoleAreaManager && stake.AreaID != user.AreaID {
			s.writeError(w, http.StatusForbidden, "you can only update stakes in your assigned area")
			return
		}
		var req api.StakeRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			stake.Name = name
		}
		if req.AreaID != nil {
			if user.Role == auth.RoleAreaManager && *req.AreaID != user.AreaID {
				s.writeError(w, http.StatusForbidden, "you can only assign stakes to your own area")
				return
			}
			stake.AreaID = *req.AreaID
		}
		if err := s.store.UpdateStake(r.Context(), stake); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		updated, err := s.store.GetStake(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromStake(updated))
	case http.MethodDelete:
		if !s.requireRole(w, user, auth.RoleAreaManager) {
			return
		}
		stake, err := s.store.GetStake(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		if user.Role == auth.RoleAreaManager && stake.AreaID != user.AreaID {
			s.writeError(w, http.StatusForbidden, "you can only delete stakes in your assigned area")
			return
		}
		if err := s.store.DeleteStake(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleWards(w http.ResponseWriter, r *http.Request, user *store.User) {
	switch r.Method {
	case http.MethodGet:
		wards, err := s.store.ListWards(r.Context())
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.WardListResponse{Wards: api.FromWards(wards)})
	case http.MethodPost:
		if !s.requireRole(w, user, auth.RoleStakeManager) {
			return
		}
		var req api.WardRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var stakeID int64
		if req.StakeID != nil {
			stakeID = *req.StakeID
		}
		ward, err := s.store.CreateWard(r.Context(), req.Name, stakeID)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.FromWard(ward))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleWardItem routes the ward subtree: the ward record itself plus the
// per-ward selection and history endpoints.
func (s *Server) handleWardItem(w http.ResponseWriter, r *http.Request, user *store.User) {
	id, tail, ok := pathID(r.URL.Path, "/api/v1/wards/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case len(tail) == 0:
		s.handleWardRecord(w, r, user, id)
	case tail[0] == "selection":
		switch {
		case len(tail) == 1:
			s.handleWardSelection(w, r, user, id)
		case len(tail) == 2 && tail[1] == "replacement":
			s.handleWardReplacement(w, r, user, id)
		case len(tail) == 2 && tail[1] == "candidates":
			s.handleWardCandidates(w, r, user, id)
		case len(tail) == 2 && tail[1] == "latest":
			s.handleWardLatest(w, r, user, id)
		default:
			s.writeError(w, http.StatusNotFound, "not found")
		}
	case tail[0] == "history" && len(tail) == 1:
		s.handleWardHistory(w, r, user, id)
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleWardRecord(w http.ResponseWriter, r *http.Request, user *store.User, id int64) {
	switch r.Method {
	case http.MethodGet:
		ward, err := s.store.GetWard(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromWard(ward))
	case http.MethodPut:
		if !s.requireRole(w, user, auth.RoleStakeManager) {
			return
		}
		ward, err := s.store.GetWard(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		var req api.WardRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			ward.Name = name
		}
		if req.StakeID != nil {
			ward.StakeID = *req.StakeID
		}
		if err := s.store.UpdateWard(r.Context(), ward); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		updated, err := s.store.GetWard(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromWard(updated))
	case http.MethodDelete:
		if !s.requireRole(w, user, auth.RoleStakeManager) {
			return
		}
		if err := s.store.DeleteWard(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
