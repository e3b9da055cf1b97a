package testsupport

import (
	"context"
	"testing"

	"innario/internal/config"
	"innario/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedWard creates a ward without a stake for tests using the provided store.
func SeedWard(t testing.TB, st *store.Store, name string) *store.Ward {
	t.Helper()

	ward, err := st.CreateWard(context.Background(), name, 0)
	if err != nil {
		t.Fatalf("store.CreateWard: %v", err)
	}
	return ward
}
