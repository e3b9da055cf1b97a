package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"innario/internal/api"
	"innario/internal/auth"
	"innario/internal/config"
	"innario/internal/hymnal"
	"innario/internal/logging"
	"innario/internal/rotation"
	"innario/internal/selection"
	"innario/internal/store"
)

// Server exposes the planner, the catalog, and the organization registry
// over HTTP. Everything under /api/v1 except the health probe and the
// login endpoint requires a bearer token.
type Server struct {
	bind       string
	logger     *slog.Logger
	store      *store.Store
	tokens     *auth.TokenManager
	index      *hymnal.Index
	engine     *selection.Engine
	selections *api.SelectionService
	bcryptCost int

	listener net.Listener
	server   *http.Server
}

// New wires the selection engine, the rotation planner, and the request
// routes for the given catalog index and store.
func New(cfg *config.Config, st *store.Store, index *hymnal.Index, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if index == nil {
		return nil, errors.New("catalog index is required")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	engine := selection.NewEngine(index, selection.WithLogger(logger))
	planner := rotation.NewPlanner(engine, st,
		rotation.WithWindows(cfg.Selection.LookbackWeeks, cfg.Selection.RelaxedWeeks),
		rotation.WithLogger(logger))

	srv := &Server{
		bind:       bind,
		logger:     logger,
		store:      st,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		index:      index,
		engine:     engine,
		selections: api.NewSelectionService(planner, st),
		bcryptCost: cfg.Auth.BcryptCost,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/me", srv.requireUser(srv.handleMe))
	mux.HandleFunc("/api/v1/selection", srv.requireUser(srv.handleSelectionPreview))
	mux.HandleFunc("/api/v1/hymns", srv.requireUser(srv.handleHymns))
	mux.HandleFunc("/api/v1/hymns/", srv.requireUser(srv.handleHymnsSub))
	mux.HandleFunc("/api/v1/areas", srv.requireUser(srv.handleAreas))
	mux.HandleFunc("/api/v1/areas/", srv.requireUser(srv.handleAreaItem))
	mux.HandleFunc("/api/v1/stakes", srv.requireUser(srv.handleStakes))
	mux.HandleFunc("/api/v1/stakes/", srv.requireUser(srv.handleStakeItem))
	mux.HandleFunc("/api/v1/wards", srv.requireUser(srv.handleWards))
	mux.HandleFunc("/api/v1/wards/", srv.requireUser(srv.handleWardItem))
	mux.HandleFunc("/api/v1/users", srv.requireUser(srv.handleUsers))
	mux.HandleFunc("/api/v1/users/", srv.requireUser(srv.handleUserItem))

	srv.server = &http.Server{
		Handler:           srv.withRequestLog(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address. The server shuts
// down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
