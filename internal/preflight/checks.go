package preflight

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"innario/internal/config"
	"innario/internal/hymnal"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalog verifies that the hymn catalog file exists and parses.
func CheckCatalog(path string) Result {
	const name = "Hymn catalog"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "no catalog path configured"}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s missing (run 'innario catalog fetch')", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	catalog, err := hymnal.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	stats := hymnal.NewIndex(catalog).Stats()
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d hymns, %d sacramento", stats.TotalHymns, stats.SacramentoHymns),
	}
}

// CheckJWTSecret verifies that a signing secret is configured.
func CheckJWTSecret(cfg *config.Config) Result {
	const name = "JWT secret"

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return Result{Name: name, Detail: "missing (set INNARIO_JWT_SECRET or auth.jwt_secret)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckDatabase reports the state of the SQLite database file. A database
// that has not been created yet is a normal state before the first serve run.
func CheckDatabase(cfg *config.Config) Result {
	const name = "Database"

	path := cfg.DatabasePath()
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d KiB)", path, info.Size()/1024)}
}

// CheckInstanceLock inspects the single-instance lock and the PID file. The
// only failure mode is a stale PID file: the lock is free but a previous run
// never cleaned up its PID record.
func CheckInstanceLock(cfg *config.Config) Result {
	const name = "Instance lock"

	probe := ProbeServer(cfg)
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.LockPath(), err)}
	}
	if locked {
		_ = lock.Unlock()
		if probe.PID > 0 {
			return Result{Name: name, Detail: fmt.Sprintf("free, but stale pid file reports %d", probe.PID)}
		}
		return Result{Name: name, Passed: true, Detail: "free"}
	}
	if probe.Running {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("held by running server (pid %d)", probe.PID)}
	}
	return Result{Name: name, Passed: true, Detail: "held by another process"}
}
