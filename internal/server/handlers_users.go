package server

import (
	"errors"
	"net/http"
	"strings"

	"innario/internal/api"
	"innario/internal/auth"
	"innario/internal/logging"
	"innario/internal/store"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		s.writeFailure(w, r, err)
		return
	}
	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		s.writeError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}
	if !user.Active {
		s.writeError(w, http.StatusForbidden, "account is inactive")
		return
	}
	token, expires, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.log().Info("user logged in", logging.String(logging.FieldUser, user.Username))
	s.writeJSON(w, http.StatusOK, api.FromLogin(token, expires, user))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *store.User) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.FromUser(user))
	case http.MethodPut:
		var req api.UpdateMeRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Password != nil && *req.Password != "" {
			if len(*req.Password) < minPasswordLength {
				s.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
				return
			}
			if req.CurrentPassword == nil || *req.CurrentPassword == "" {
				s.writeError(w, http.StatusBadRequest, "current password is required to set a new password")
				return
			}
			if !auth.CheckPassword(user.HashedPassword, *req.CurrentPassword) {
				s.writeError(w, http.StatusBadRequest, "current password is incorrect")
				return
			}
			hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
			if err != nil {
				s.writeFailure(w, r, err)
				return
			}
			user.HashedPassword = hash
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if err := s.store.UpdateUser(r.Context(), user); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		updated, err := s.store.GetUser(r.Context(), user.ID)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromUser(updated))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// canManageRole reports whether the caller's rank allows administering an
// account of the given role. Managers never reach sideways or up.
func (s *Server) canManageRole(w http.ResponseWriter, caller *store.User, target auth.Role) bool {
	allowed := false
	switch caller.Role {
	case auth.RoleSuperadmin:
		allowed = true
	case auth.RoleAreaManager:
		allowed = target == auth.RoleStakeManager || target == auth.RoleWardUser
	case auth.RoleStakeManager:
		allowed = target == auth.RoleWardUser
	}
	if !allowed {
		s.writeError(w, http.StatusForbidden, "you cannot manage accounts with role "+target.String())
	}
	return allowed
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, user *store.User) {
	switch r.Method {
	case http.MethodGet:
		if !s.requireRole(w, user, auth.RoleStakeManager) {
			return
		}
		users, err := s.store.VisibleUsers(r.Context(), user)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.UserListResponse{Users: api.FromUsers(users)})
	case http.MethodPost:
		if !s.requireRole(w, user, auth.RoleStakeManager) {
			return
		}
		var req api.CreateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		role, err := auth.ParseRole(req.Role)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !s.canManageRole(w, user, role) {
			return
		}
		if len(strings.TrimSpace(req.Username)) < minUsernameLength {
			s.writeError(w, http.StatusBadRequest, "username must be at least 3 characters")
			return
		}
		if !strings.Contains(req.Email, "@") {
			s.writeError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		if len(req.Password) < minPasswordLength {
			s.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		created, err := s.store.CreateUser(r.Context(), store.CreateUserParams{
			Username:       req.Username,
			Email:          req.Email,
			HashedPassword: hash,
			FullName:       req.FullName,
			Role:           role,
			AreaID:         req.AreaID,
			StakeID:        req.StakeID,
			WardIDs:        req.WardIDs,
		})
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.log().Info("user created",
			logging.String(logging.FieldUser, created.Username),
			logging.String("role", created.Role.String()))
		s.writeJSON(w, http.StatusCreated, api.FromUser(created))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUserItem(w http.ResponseWriter, r *http.Request, user *store.User) {
	id, tail, ok := pathID(r.URL.Path, "/api/v1/users/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(tail) == 1 && tail[0] == "wards" {
		s.handleUserWards(w, r, user, id)
		return
	}
	if len(tail) != 0 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !s.requireRole(w, user, auth.RoleStakeManager) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		target, err := s.store.GetUser(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromUser(target))
	case http.MethodPut:
		target, err := s.store.GetUser(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		var req api.UpdateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email != nil {
			target.Email = *req.Email
		}
		if req.FullName != nil {
			target.FullName = *req.FullName
		}
		if req.Active != nil {
			target.Active = *req.Active
		}
		// Only superadmins change roles; the field is ignored otherwise.
		if req.Role != nil && user.Role == auth.RoleSuperadmin {
			role, err := auth.ParseRole(*req.Role)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			target.Role = role
		}
		if req.AreaID != nil {
			target.AreaID = *req.AreaID
		}
		if req.StakeID != nil {
			target.StakeID = *req.StakeID
		}
		if req.Password != nil && *req.Password != "" {
			if len(*req.Password) < minPasswordLength {
				s.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
				return
			}
			hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
			if err != nil {
				s.writeFailure(w, r, err)
				return
			}
			target.HashedPassword = hash
		}
		if err := s.store.UpdateUser(r.Context(), target); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		updated, err := s.store.GetUser(r.Context(), id)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromUser(updated))
	case http.MethodDelete:
		if !s.requireRole(w, user, auth.RoleSuperadmin) {
			return
		}
		if id == user.ID {
			s.writeError(w, http.StatusBadRequest, "you cannot delete your own account")
			return
		}
		if err := s.store.DeleteUser(r.Context(), id); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleUserWards replaces a user's ward assignments.
func (s *Server) handleUserWards(w http.ResponseWriter, r *http.Request, user *store.User, id int64) {
	if r.Method != http.MethodPut {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireRole(w, user, auth.RoleStakeManager) {
		return
	}
	if _, err := s.store.GetUser(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req api.AssignWardsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.AssignWards(r.Context(), id, req.WardIDs); err != nil {
		// The user was just fetched, so a vanished row here means one of
		// the ward ids does not exist.
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusBadRequest, "some ward ids are invalid")
			return
		}
		s.writeFailure(w, r, err)
		return
	}
	updated, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromUser(updated))
}
