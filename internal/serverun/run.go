package serverun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"innario/internal/config"
	"innario/internal/hymnal"
	"innario/internal/logging"
	"innario/internal/preflight"
	"innario/internal/server"
	"innario/internal/store"
)

// Options configures serve process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the innario API server runtime loop. It owns the process-level
// concerns: signal handling, the dated log file plus the innario.log pointer,
// log retention, the single-instance lock, and the PID file. It blocks until
// the context is cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("innario-%s.log", runID))

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logRuntimeSnapshot(logger, cfg, runID)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update innario.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, "innario-*.log", cfg.Logging.RetentionDays, logPath)

	for _, check := range []preflight.Result{
		preflight.CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	} {
		if !check.Passed {
			return fmt.Errorf("preflight %s: %s", check.Name, check.Detail)
		}
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return errors.New("another innario server instance is already running")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := writePIDFile(cfg.PIDPath()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(cfg.PIDPath())

	catalog, err := hymnal.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("load hymn catalog",
			logging.Error(err),
			logging.String("path", cfg.Catalog.Path),
		)
		return fmt.Errorf("load hymn catalog (run 'innario catalog fetch' first): %w", err)
	}
	index := hymnal.NewIndex(catalog)
	stats := index.Stats()
	logger.Info("hymn catalog loaded",
		logging.String("path", cfg.Catalog.Path),
		logging.Int("hymns", stats.TotalHymns),
		logging.Int("sacramento", stats.SacramentoHymns),
		logging.Int("categories", stats.Categories),
	)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	srv, err := server.New(cfg, st, index, logger)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	defer srv.Stop()

	if err := srv.Start(signalCtx); err != nil {
		logger.Error("start api server", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("innario server shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "innario.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logRuntimeSnapshot(logger *slog.Logger, cfg *config.Config, runID string) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("runtime snapshot",
		logging.String("run_id", runID),
		logging.String("bind", cfg.Paths.APIBind),
		logging.String("catalog_path", cfg.Catalog.Path),
		logging.String("database_path", cfg.DatabasePath()),
		logging.Bool("jwt_secret_present", strings.TrimSpace(cfg.Auth.JWTSecret) != ""),
		logging.Duration("token_ttl", cfg.TokenTTL()),
		logging.Int("lookback_weeks", cfg.Selection.LookbackWeeks),
		logging.Int("relaxed_weeks", cfg.Selection.RelaxedWeeks),
	)
}
