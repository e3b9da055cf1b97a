package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"innario/internal/hymnal"
	"innario/internal/store"
	"innario/internal/testsupport"
)

func TestCreateAndGetArea(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	area, err := st.CreateArea(ctx, "  Europa Sud  ")
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	if area.ID == 0 || area.Name != "Europa Sud" {
		t.Fatalf("unexpected area: %#v", area)
	}
	if area.StakeCount != 0 {
		t.Fatalf("expected zero stakes, got %d", area.StakeCount)
	}

	if _, err := st.CreateStake(ctx, "Palo di Milano", area.ID); err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	fetched, err := st.GetArea(ctx, area.ID)
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if fetched.StakeCount != 1 {
		t.Fatalf("expected one stake, got %d", fetched.StakeCount)
	}
}

func TestCreateAreaDuplicateName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.CreateArea(ctx, "Europa Sud"); err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	if _, err := st.CreateArea(ctx, "Europa Sud"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRenameArea(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := st.CreateArea(ctx, "Europa Sud")
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	if _, err := st.CreateArea(ctx, "Europa Centrale"); err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}

	renamed, err := st.RenameArea(ctx, first.ID, "Europa Mediterranea")
	if err != nil {
		t.Fatalf("RenameArea failed: %v", err)
	}
	if renamed.Name != "Europa Mediterranea" {
		t.Fatalf("unexpected name %q", renamed.Name)
	}

	if _, err := st.RenameArea(ctx, first.ID, "Europa Centrale"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := st.RenameArea(ctx, 9999, "Nuova"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAreaDetachesStakes(t *testing.T) {
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

	if err := st.DeleteArea(ctx, area.ID); err != nil {
		t.Fatalf("DeleteArea failed: %v", err)
	}
	if _, err := st.GetArea(ctx, area.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	kept, err := st.GetStake(ctx, stake.ID)
	if err != nil {
		t.Fatalf("GetStake failed: %v", err)
	}
	if kept.AreaID != 0 || kept.AreaName != "" {
		t.Fatalf("expected detached stake, got %#v", kept)
	}
}

func TestStakeLifecycle(t *testing.T) {
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
	if milano.AreaName != "Europa Sud" {
		t.Fatalf("expected area name, got %q", milano.AreaName)
	}
	roma, err := st.CreateStake(ctx, "Palo di Roma", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	if roma.AreaID != 0 || roma.AreaName != "" {
		t.Fatalf("expected stake without area, got %#v", roma)
	}

	if _, err := st.CreateWard(ctx, "Rione Navigli", milano.ID); err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	fetched, err := st.GetStake(ctx, milano.ID)
	if err != nil {
		t.Fatalf("GetStake failed: %v", err)
	}
	if fetched.WardCount != 1 {
		t.Fatalf("expected one ward, got %d", fetched.WardCount)
	}

	all, err := st.ListStakes(ctx, 0)
	if err != nil {
		t.Fatalf("ListStakes failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Palo di Milano" || all[1].Name != "Palo di Roma" {
		t.Fatalf("unexpected stakes: %#v", all)
	}
	inArea, err := st.ListStakes(ctx, area.ID)
	if err != nil {
		t.Fatalf("ListStakes failed: %v", err)
	}
	if len(inArea) != 1 || inArea[0].ID != milano.ID {
		t.Fatalf("unexpected filtered stakes: %#v", inArea)
	}

	roma.Name = "Palo di Roma Est"
	roma.AreaID = area.ID
	if err := st.UpdateStake(ctx, roma); err != nil {
		t.Fatalf("UpdateStake failed: %v", err)
	}
	updated, err := st.GetStake(ctx, roma.ID)
	if err != nil {
		t.Fatalf("GetStake failed: %v", err)
	}
	if updated.Name != "Palo di Roma Est" || updated.AreaID != area.ID || updated.AreaName != "Europa Sud" {
		t.Fatalf("unexpected updated stake: %#v", updated)
	}
}

func TestCreateStakeUnknownArea(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.CreateStake(context.Background(), "Palo di Milano", 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStakeRemovesWardsAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stake, err := st.CreateStake(ctx, "Palo di Milano", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	ward, err := st.CreateWard(ctx, "Rione Navigli", stake.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	if _, err := st.RecordSelection(ctx, store.SelectionRecord{
		WardID:        ward.ID,
		SelectionDate: time.Now(),
		Hymns: []hymnal.Hymn{
			{Number: 41, Title: "Quale fondamento", Category: "Vangelo"},
			{Number: 180, Title: "Attoniti e stupiti", Category: "Sacramento"},
			{Number: 85, Title: "Dolce è il lavor", Category: "Lode"},
		},
	}); err != nil {
		t.Fatalf("RecordSelection failed: %v", err)
	}

	if err := st.DeleteStake(ctx, stake.ID); err != nil {
		t.Fatalf("DeleteStake failed: %v", err)
	}
	if _, err := st.GetWard(ctx, ward.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	latest, err := st.MostRecent(ctx, ward.ID)
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected history to be gone, got %#v", latest)
	}
}

func TestWardLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stake, err := st.CreateStake(ctx, "Palo di Milano", 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	ward, err := st.CreateWard(ctx, "Rione Navigli", stake.ID)
	if err != nil {
		t.Fatalf("CreateWard failed: %v", err)
	}
	if ward.StakeName != "Palo di Milano" {
		t.Fatalf("expected stake name, got %q", ward.StakeName)
	}

	if _, err := st.CreateWard(ctx, "Rione Navigli", 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	byName, err := st.GetWardByName(ctx, "Rione Navigli")
	if err != nil {
		t.Fatalf("GetWardByName failed: %v", err)
	}
	if byName.ID != ward.ID {
		t.Fatalf("expected ward %d, got %d", ward.ID, byName.ID)
	}

	ward.StakeID = 0
	if err := st.UpdateWard(ctx, ward); err != nil {
		t.Fatalf("UpdateWard failed: %v", err)
	}
	moved, err := st.GetWard(ctx, ward.ID)
	if err != nil {
		t.Fatalf("GetWard failed: %v", err)
	}
	if moved.StakeID != 0 || moved.StakeName != "" {
		t.Fatalf("expected ward without stake, got %#v", moved)
	}

	inStake, err := st.ListWardsByStake(ctx, stake.ID)
	if err != nil {
		t.Fatalf("ListWardsByStake failed: %v", err)
	}
	if len(inStake) != 0 {
		t.Fatalf("expected no wards in stake, got %#v", inStake)
	}

	if err := st.DeleteWard(ctx, ward.ID); err != nil {
		t.Fatalf("DeleteWard failed: %v", err)
	}
	if err := st.DeleteWard(ctx, ward.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetOrCreateWard(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := st.GetOrCreateWard(ctx, "Rione Trastevere")
	if err != nil {
		t.Fatalf("GetOrCreateWard failed: %v", err)
	}
	second, err := st.GetOrCreateWard(ctx, "Rione Trastevere")
	if err != nil {
		t.Fatalf("GetOrCreateWard failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same ward, got %d and %d", first.ID, second.ID)
	}

	wards, err := st.ListWards(ctx)
	if err != nil {
		t.Fatalf("ListWards failed: %v", err)
	}
	if len(wards) != 1 {
		t.Fatalf("expected one ward, got %d", len(wards))
	}
}
