package main

import (
	"context"
	"testing"

	"innario/internal/auth"
	"innario/internal/testsupport"
)

func TestAdminCreateSuperadmin(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{
		"admin", "create-superadmin",
		"--username", "root",
		"--email", "root@example.org",
		"--password", "hunter2hunter2",
		"--full-name", "Root Admin",
	}, env.configPath)
	if err != nil {
		t.Fatalf("create-superadmin: %v", err)
	}
	requireContains(t, stdout, "Created superadmin root")

	st := testsupport.MustOpenStore(t, env.cfg)
	user, err := st.GetUserByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("lookup user: %v", err)
	}
	if user.Role != auth.RoleSuperadmin {
		t.Fatalf("role = %q, want %q", user.Role, auth.RoleSuperadmin)
	}
	if !auth.CheckPassword(user.HashedPassword, "hunter2hunter2") {
		t.Fatal("stored password hash does not verify")
	}
}

func TestAdminCreateSuperadminDuplicate(t *testing.T) {
	env := setupCLITestEnv(t)
	args := []string{
		"admin", "create-superadmin",
		"--username", "root",
		"--email", "root@example.org",
		"--password", "hunter2hunter2",
	}

	if _, _, err := runCLI(t, args, env.configPath); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, _, err := runCLI(t, args, env.configPath)
	if err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
	requireContains(t, err.Error(), "already exists")
}

func TestAdminCreateSuperadminRequiresFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"admin", "create-superadmin", "--username", "root"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing flags to be rejected")
	}
}
