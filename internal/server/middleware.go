package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"innario/internal/auth"
	"innario/internal/logging"
	"innario/internal/store"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags every request with a uuid and logs method, path,
// status, and duration once the handler returns.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log().Debug("request",
			logging.String(logging.FieldRequestID, requestID),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("duration", time.Since(start)))
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user *store.User)

// requireUser validates the bearer token and resolves the account behind
// it. Disabled accounts keep their tokens but are refused.
func (s *Server) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		username, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		user, err := s.store.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if !user.Active {
			s.writeError(w, http.StatusForbidden, "account is inactive")
			return
		}
		next(w, r, user)
	}
}

// requireRole rejects callers below the required rank. It reports whether
// the handler may continue.
func (s *Server) requireRole(w http.ResponseWriter, user *store.User, required auth.Role) bool {
	if !user.Role.AtLeast(required) {
		s.writeError(w, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}

// wardVisible reports whether the user's role scope includes the ward.
func (s *Server) wardVisible(ctx context.Context, user *store.User, wardID int64) (bool, error) {
	ids, all, err := s.store.VisibleWardIDs(ctx, user)
	if err != nil {
		return false, err
	}
	if all {
		return true, nil
	}
	for _, id := range ids {
		if id == wardID {
			return true, nil
		}
	}
	return false, nil
}
