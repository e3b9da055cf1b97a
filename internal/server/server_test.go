package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"innario/internal/api"
	"innario/internal/auth"
	"innario/internal/config"
	"innario/internal/logging"
	"innario/internal/store"
	"innario/internal/testsupport"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	index := testsupport.MustLoadIndex(t, testsupport.SampleCatalog())
	srv, err := New(cfg, st, index, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return srv, st
}

// seedAccount stores an account with password "password123" and returns it
// together with a valid bearer token.
func seedAccount(t *testing.T, srv *Server, role auth.Role, username string, mutate func(*store.CreateUserParams)) (*store.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	params := store.CreateUserParams{
		Username:       username,
		Email:          username + "@example.org",
		HashedPassword: hash,
		Role:           role,
	}
	if mutate != nil {
		mutate(&params)
	}
	user, err := srv.store.CreateUser(context.Background(), params)
	if err != nil {
		t.Fatalf("CreateUser %s failed: %v", username, err)
	}
	token, _, err := srv.tokens.Issue(user.Username)
	if err != nil {
		t.Fatalf("Issue token failed: %v", err)
	}
	return user, token
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestNewRequiresBindAddress(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(cfg *config.Config) {
		cfg.Paths.APIBind = "  "
	})
	st := testsupport.MustOpenStore(t, cfg)
	index := testsupport.MustLoadIndex(t, testsupport.SampleCatalog())
	if _, err := New(cfg, st, index, logging.NewNop()); err == nil {
		t.Fatal("expected error for blank bind address")
	}
}

func TestHealthzIsOpen(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.HealthResponse
	decodeBody(t, w, &resp)
	if resp.Status != "ok" || resp.Catalog != 13 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	srv, _ := newTestServer(t)
	seedAccount(t, srv, auth.RoleWardUser, "anna.bianchi", nil)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Username: "anna.bianchi",
		Password: "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.LoginResponse
	decodeBody(t, w, &resp)
	if resp.Token == "" || resp.TokenType != "bearer" || resp.ExpiresAt == "" {
		t.Fatalf("unexpected login payload: %+v", resp)
	}
	if resp.User.Username != "anna.bianchi" {
		t.Fatalf("unexpected user in login payload: %+v", resp.User)
	}

	me := doRequest(t, srv, http.MethodGet, "/api/v1/me", resp.Token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("expected token to work, got %d", me.Code)
	}
	var profile api.User
	decodeBody(t, me, &profile)
	if profile.Username != "anna.bianchi" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, st := newTestServer(t)
	user, _ := seedAccount(t, srv, auth.RoleWardUser, "anna.bianchi", nil)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Username: "anna.bianchi",
		Password: "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Username: "nobody",
		Password: "password123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}

	user.Active = false
	if err := st.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	w = doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Username: "anna.bianchi",
		Password: "password123",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", w.Code)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	srv, st := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/wards", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/v1/wards", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}

	// A valid token stops working once the account is disabled.
	user, token := seedAccount(t, srv, auth.RoleWardUser, "anna.bianchi", nil)
	user.Active = false
	if err := st.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	w = doRequest(t, srv, http.MethodGet, "/api/v1/wards", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", w.Code)
	}
}
