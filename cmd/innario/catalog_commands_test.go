package main

import (
	"encoding/json"
	"testing"

	"innario/internal/api"
)

func TestCatalogStatsJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"catalog", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	var stats api.CatalogStats
	if err := json.Unmarshal([]byte(stdout), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Total != 13 {
		t.Fatalf("total = %d, want 13", stats.Total)
	}
	if stats.Sacramento != 3 {
		t.Fatalf("sacramento = %d, want 3", stats.Sacramento)
	}
	if stats.Categories["sacramento"] != 3 {
		t.Fatalf("categories[sacramento] = %d, want 3", stats.Categories["sacramento"])
	}
}

func TestCatalogStatsText(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"catalog", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	requireContains(t, stdout, "Hymns: 13")
	requireContains(t, stdout, "sacramento")
	requireContains(t, stdout, "restaurazione")
}
