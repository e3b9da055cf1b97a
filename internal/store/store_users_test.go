package store_test

import (
	"context"
	"errors"
	"testing"

	"innario/internal/auth"
	"innario/internal/store"
	"innario/internal/testsupport"
)

func TestCreateUserAndLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user, err := st.CreateUser(ctx, store.CreateUserParams{
		Username:       "Anna.Bianchi",
		Email:          "Anna@Example.org",
		HashedPassword: "hashed",
		FullName:       "Anna Bianchi",
		Role:           auth.RoleSuperadmin,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Username != "anna.bianchi" || user.Email != "anna@example.org" {
		t.Fatalf("expected lowercased identity, got %#v", user)
	}
	if !user.Active {
		t.Fatal("expected new user to be active")
	}
	if len(user.WardIDs) != 0 {
		t.Fatalf("expected no assignments, got %v", user.WardIDs)
	}

	fetched, err := st.GetUserByUsername(ctx, "ANNA.BIANCHI")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if fetched.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, fetched.ID)
	}
}

func TestCreateUserDuplicateIdentity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	params := store.CreateUserParams{
		Username:       "anna.bianchi",
		Email:          "anna@example.org",
		HashedPassword: "hashed",
		Role:           auth.RoleWardUser,
	}
	if _, err := st.CreateUser(ctx, params); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dup := params
	dup.Email = "other@example.org"
	if _, err := st.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for username, got %v", err)
	}

	dup = params
	dup.Username = "other.user"
	if _, err := st.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for email, got %v", err)
	}
}

func TestCreateUserKeepsRoleScopedReferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	area, err := st.CreateArea(ctx, "Europa Sud")
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	stake, err := st.CreateStake(ctx, "Palo di Milano", area.ID)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	ward := testsupport.SeedWard(t, st, "Rione Navigli")

	manager, err := st.CreateUser(ctx, store.CreateUserParams{
		Username:       "area.manager",
		Email:          "area@example.org",
		HashedPassword: "hashed",
		Role:           auth.RoleAreaManager,
		AreaID:         area.ID,
		StakeID:        stake.ID,
		WardIDs:        []int64{ward.ID},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if manager.AreaID != area.ID || manager.StakeID != 0 || len(manager.WardIDs) != 0 {
		t.Fatalf("expected area reference only, got %#v", manager)
	}

	wardUser, err := st.CreateUser(ctx, store.CreateUserParams{
		Username:       "ward.user",
		Email:          "ward@example.org",
		HashedPassword: "hashed",
		Role:           auth.RoleWardUser,
		AreaID:         area.ID,
		StakeID:        stake.ID,
		WardIDs:        []int64{ward.ID},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if wardUser.AreaID != 0 || wardUser.StakeID != 0 {
		t.Fatalf("expected no organization references, got %#v", wardUser)
	}
	if len(wardUser.WardIDs) != 1 || wardUser.WardIDs[0] != ward.ID {
		t.Fatalf("expected ward assignment, got %v", wardUser.WardIDs)
	}
}

func TestCreateUserUnknownWardRollsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	_, err := st.CreateUser(ctx, store.CreateUserParams{
		Username:       "ward.user",
		Email:          "ward@example.org",
		HashedPassword: "hashed",
		Role:           auth.RoleWardUser,
		WardIDs:        []int64{42},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetUserByUsername(ctx, "ward.user"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected user insert to roll back, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stake, err := st.CreateStake(ctx, "Palo di Milano", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	user, err := st.CreateUser(ctx, store.CreateUserParams{
		Username:       "anna.bianchi",
		Email:          "anna@example.org",
		HashedPassword: "hashed",
		Role:           auth.RoleWardUser,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.Email = "anna.bianchi@example.org"
	user.FullName = "Anna Bianchi"
	user.Active = false
	user.Role = auth.RoleStakeManager
	user.StakeID = stake.ID
	if err := st.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	updated, err := st.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.Email != "anna.bianchi@example.org" || updated.FullName != "Anna Bianchi" {
		t.Fatalf("unexpected identity: %#v", updated)
	}
	if updated.Active {
		t.Fatal("expected deactivated user")
	}
	if updated.Role != auth.RoleStakeManager || updated.StakeID != stake.ID {
		t.Fatalf("unexpected role state: %#v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at to advance: %#v", updated)
	}
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "first.user", Email: "first@example.org", HashedPassword: "hashed", Role: auth.RoleWardUser,
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	second, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "second.user", Email: "second@example.org", HashedPassword: "hashed", Role: auth.RoleWardUser,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	second.Email = "first@example.org"
	if err := st.UpdateUser(ctx, second); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "anna.bianchi", Email: "anna@example.org", HashedPassword: "hashed", Role: auth.RoleWardUser,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := st.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := st.GetUser(ctx, user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteUser(ctx, user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignWardsReplacesSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.SeedWard(t, st, "Rione Navigli")
	second := testsupport.SeedWard(t, st, "Rione Brera")
	third := testsupport.SeedWard(t, st, "Rione Lambrate")
	user, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "ward.user", Email: "ward@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser, WardIDs: []int64{first.ID, second.ID},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := st.AssignWards(ctx, user.ID, []int64{second.ID, third.ID, third.ID}); err != nil {
		t.Fatalf("AssignWards failed: %v", err)
	}
	updated, err := st.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if len(updated.WardIDs) != 2 || updated.WardIDs[0] != second.ID || updated.WardIDs[1] != third.ID {
		t.Fatalf("unexpected assignments: %v", updated.WardIDs)
	}

	if err := st.AssignWards(ctx, user.ID, []int64{first.ID, 9999}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	unchanged, err := st.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if len(unchanged.WardIDs) != 2 {
		t.Fatalf("expected failed assignment to roll back, got %v", unchanged.WardIDs)
	}
}

func TestVisibleWardIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	area, err := st.CreateArea(ctx, "Europa Sud")
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	milano, err := st.CreateStake(ctx, "Palo di Milano", area.ID)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	roma, err := st.CreateStake(ctx, "Palo di Roma", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	navigli, err := st.CreateWard(ctx, "Rione Navigli", milano.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	brera, err := st.CreateWard(ctx, "Rione Brera", milano.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	trastevere, err := st.CreateWard(ctx, "Rione Trastevere", roma.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	orphan := testsupport.SeedWard(t, st, "Rione Indipendente")

	admin, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "super.admin", Email: "admin@example.org", HashedPassword: "hashed",
		Role: auth.RoleSuperadmin,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ids, all, err := st.VisibleWardIDs(ctx, admin)
	if err != nil {
		t.Fatalf("VisibleWardIDs failed: %v", err)
	}
	if !all || ids != nil {
		t.Fatalf("expected full visibility, got ids=%v all=%v", ids, all)
	}

	areaManager, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "area.manager", Email: "area@example.org", HashedPassword: "hashed",
		Role: auth.RoleAreaManager, AreaID: area.ID,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ids, all, err = st.VisibleWardIDs(ctx, areaManager)
	if err != nil {
		t.Fatalf("VisibleWardIDs failed: %v", err)
	}
	if all || len(ids) != 2 || ids[0] != navigli.ID || ids[1] != brera.ID {
		t.Fatalf("unexpected area visibility: ids=%v all=%v", ids, all)
	}

	stakeManager, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "stake.manager", Email: "stake@example.org", HashedPassword: "hashed",
		Role: auth.RoleStakeManager, StakeID: roma.ID,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ids, all, err = st.VisibleWardIDs(ctx, stakeManager)
	if err != nil {
		t.Fatalf("VisibleWardIDs failed: %v", err)
	}
	if all || len(ids) != 1 || ids[0] != trastevere.ID {
		t.Fatalf("unexpected stake visibility: ids=%v all=%v", ids, all)
	}

	wardUser, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "ward.user", Email: "ward@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser, WardIDs: []int64{orphan.ID},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ids, all, err = st.VisibleWardIDs(ctx, wardUser)
	if err != nil {
		t.Fatalf("VisibleWardIDs failed: %v", err)
	}
	if all || len(ids) != 1 || ids[0] != orphan.ID {
		t.Fatalf("unexpected ward visibility: ids=%v all=%v", ids, all)
	}

	unassigned, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "new.user", Email: "new@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ids, all, err = st.VisibleWardIDs(ctx, unassigned)
	if err != nil {
		t.Fatalf("VisibleWardIDs failed: %v", err)
	}
	if all || len(ids) != 0 {
		t.Fatalf("expected empty visibility, got ids=%v all=%v", ids, all)
	}
}

func TestListUsersIncludesAssignments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	ward := testsupport.SeedWard(t, st, "Rione Navigli")
	if _, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "zelda.rossi", Email: "zelda@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser, WardIDs: []int64{ward.ID},
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := st.CreateUser(ctx, store.CreateUserParams{
		Username: "anna.bianchi", Email: "anna@example.org", HashedPassword: "hashed",
		Role: auth.RoleSuperadmin,
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].Username != "anna.bianchi" || users[1].Username != "zelda.rossi" {
		t.Fatalf("unexpected users: %#v", users)
	}
	if len(users[0].WardIDs) != 0 {
		t.Fatalf("expected no assignments for superadmin, got %v", users[0].WardIDs)
	}
	if len(users[1].WardIDs) != 1 || users[1].WardIDs[0] != ward.ID {
		t.Fatalf("expected ward assignment, got %v", users[1].WardIDs)
	}
}

func TestVisibleUsersScopedByRole(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	area, err := st.CreateArea(ctx, "Europa Sud")
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	milano, err := st.CreateStake(ctx, "Palo di Milano", area.ID)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	roma, err := st.CreateStake(ctx, "Palo di Roma", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	navigli, err := st.CreateWard(ctx, "Rione Navigli", milano.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	trastevere, err := st.CreateWard(ctx, "Rione Trastevere", roma.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}

	mustCreate := func(params store.CreateUserParams) *store.User {
		t.Helper()
		user, err := st.CreateUser(ctx, params)
		if err != nil {
			t.Fatalf("CreateUser %s failed: %v", params.Username, err)
		}
		return user
	}
	admin := mustCreate(store.CreateUserParams{
		Username: "super.admin", Email: "admin@example.org", HashedPassword: "hashed",
		Role: auth.RoleSuperadmin,
	})
	areaManager := mustCreate(store.CreateUserParams{
		Username: "area.manager", Email: "area@example.org", HashedPassword: "hashed",
		Role: auth.RoleAreaManager, AreaID: area.ID,
	})
	mustCreate(store.CreateUserParams{
		Username: "milano.manager", Email: "milano@example.org", HashedPassword: "hashed",
		Role: auth.RoleStakeManager, StakeID: milano.ID,
	})
	romaManager := mustCreate(store.CreateUserParams{
		Username: "roma.manager", Email: "roma@example.org", HashedPassword: "hashed",
		Role: auth.RoleStakeManager, StakeID: roma.ID,
	})
	navigliUser := mustCreate(store.CreateUserParams{
		Username: "navigli.user", Email: "navigli@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser, WardIDs: []int64{navigli.ID},
	})
	mustCreate(store.CreateUserParams{
		Username: "trastevere.user", Email: "trastevere@example.org", HashedPassword: "hashed",
		Role: auth.RoleWardUser, WardIDs: []int64{trastevere.ID},
	})

	users, err := st.VisibleUsers(ctx, admin)
	if err != nil {
		t.Fatalf("VisibleUsers failed: %v", err)
	}
	if len(users) != 6 {
		t.Fatalf("expected superadmin to see 6 users, got %d", len(users))
	}

	// Area scope covers the manager itself, managers of stakes in the
	// area, and users assigned to wards of those stakes.
	users, err = st.VisibleUsers(ctx, areaManager)
	if err != nil {
		t.Fatalf("VisibleUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected area manager to see 3 users, got %d", len(users))
	}
	if users[0].Username != "area.manager" || users[1].Username != "milano.manager" || users[2].Username != "navigli.user" {
		t.Fatalf("unexpected area scope: %v", usernames(users))
	}

	users, err = st.VisibleUsers(ctx, romaManager)
	if err != nil {
		t.Fatalf("VisibleUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].Username != "roma.manager" || users[1].Username != "trastevere.user" {
		t.Fatalf("unexpected stake scope: %v", usernames(users))
	}

	if _, err := st.VisibleUsers(ctx, navigliUser); err == nil {
		t.Fatal("expected ward user listing to be rejected")
	}

	floating := mustCreate(store.CreateUserParams{
		Username: "floating.manager", Email: "floating@example.org", HashedPassword: "hashed",
		Role: auth.RoleAreaManager,
	})
	users, err = st.VisibleUsers(ctx, floating)
	if err != nil {
		t.Fatalf("VisibleUsers failed: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty scope for manager without an area, got %v", usernames(users))
	}
}

func usernames(users []*store.User) []string {
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Username)
	}
	return names
}
