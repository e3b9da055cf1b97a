package serverun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"innario/internal/testsupport"
)

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunFailsWithoutCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	err := Run(context.Background(), cfg, Options{})
	if err == nil {
		t.Fatal("expected error when catalog file is missing")
	}
	if !strings.Contains(err.Error(), "catalog fetch") {
		t.Fatalf("expected fetch hint in error, got: %v", err)
	}
	if _, statErr := os.Stat(cfg.PIDPath()); !os.IsNotExist(statErr) {
		t.Fatalf("expected pid file cleanup, stat err: %v", statErr)
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire test lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	err = Run(context.Background(), cfg, Options{})
	if err == nil {
		t.Fatal("expected error while lock is held")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteCatalog(t, cfg.Catalog.Path, testsupport.SampleCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, cfg, Options{LogLevel: "error"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(cfg.Paths.LogDir, "innario.log")); err != nil {
		t.Fatalf("expected innario.log pointer: %v", err)
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("expected pid file cleanup, stat err: %v", err)
	}

	entries, err := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "innario-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one dated log file, got %v", entries)
	}
}
