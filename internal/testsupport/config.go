package testsupport

import (
	"path/filepath"
	"testing"

	"innario/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Catalog.Path = filepath.Join(base, "italian_hymns_full.json")
	cfg.Auth.JWTSecret = "test-secret"
	// Minimum bcrypt cost keeps user-creating tests fast.
	cfg.Auth.BcryptCost = 4

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithJWTSecret overrides the token signing secret on the test config.
func WithJWTSecret(secret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Auth.JWTSecret = secret
	}
}

// WithSelectionWindows overrides the rotation history windows.
func WithSelectionWindows(lookbackWeeks, relaxedWeeks int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Selection.LookbackWeeks = lookbackWeeks
		cfg.Selection.RelaxedWeeks = relaxedWeeks
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
