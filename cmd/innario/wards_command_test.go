package main

import (
	"encoding/json"
	"testing"

	"innario/internal/api"
	"innario/internal/testsupport"
)

func TestWardsListsRegisteredWards(t *testing.T) {
	env := setupCLITestEnv(t)
	st := testsupport.MustOpenStore(t, env.cfg)
	testsupport.SeedWard(t, st, "Firenze 1")
	testsupport.SeedWard(t, st, "Prato")

	stdout, _, err := runCLI(t, []string{"wards"}, env.configPath)
	if err != nil {
		t.Fatalf("wards: %v", err)
	}
	requireContains(t, stdout, "Firenze 1")
	requireContains(t, stdout, "Prato")
}

func TestWardsJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	st := testsupport.MustOpenStore(t, env.cfg)
	ward := testsupport.SeedWard(t, st, "Firenze 1")

	stdout, _, err := runCLI(t, []string{"wards", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("wards --json: %v", err)
	}
	var resp api.WardListResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("unmarshal wards: %v", err)
	}
	if len(resp.Wards) != 1 {
		t.Fatalf("wards = %d, want 1", len(resp.Wards))
	}
	if resp.Wards[0].ID != ward.ID || resp.Wards[0].Name != "Firenze 1" {
		t.Fatalf("ward = %+v, want id %d Firenze 1", resp.Wards[0], ward.ID)
	}
}

func TestWardsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"wards"}, env.configPath)
	if err != nil {
		t.Fatalf("wards: %v", err)
	}
	requireContains(t, stdout, "No wards registered")
}
