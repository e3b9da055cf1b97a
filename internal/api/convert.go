package api

import (
	"time"

	"innario/internal/dateutil"
	"innario/internal/hymnal"
	"innario/internal/selection"
	"innario/internal/store"
)

// FromHymn converts a catalog entry to its API representation.
func FromHymn(hymn hymnal.Hymn) Hymn {
	return Hymn{
		Number:   hymn.Number,
		Title:    hymn.Title,
		Category: hymn.Category,
		Tags:     hymn.Tags,
	}
}

// FromHymns converts a slice of catalog entries into API DTOs.
func FromHymns(hymns []hymnal.Hymn) []Hymn {
	if len(hymns) == 0 {
		return nil
	}
	out := make([]Hymn, 0, len(hymns))
	for _, hymn := range hymns {
		out = append(out, FromHymn(hymn))
	}
	return out
}

// FromStoredSelection converts a recorded selection to its API
// representation.
func FromStoredSelection(sel *store.Selection) Selection {
	if sel == nil {
		return Selection{}
	}
	hymns := make([]SelectedHymn, 0, len(sel.Hymns))
	for _, hymn := range sel.Hymns {
		hymns = append(hymns, SelectedHymn{
			Position: hymn.Position,
			Number:   hymn.Number,
			Title:    hymn.Title,
			Category: hymn.Category,
		})
	}
	dto := Selection{
		ID:          sel.ID,
		WardID:      sel.WardID,
		Date:        sel.SelectionDate.Format(dateFormat),
		SundayLabel: dateutil.FormatSunday(sel.SelectionDate),
		FirstSunday: sel.FirstSunday,
		Festive:     sel.Festive,
		Festivity:   sel.Festivity.String(),
		HymnCount:   len(hymns),
		Hymns:       hymns,
		Recorded:    true,
	}
	if !sel.CreatedAt.IsZero() {
		dto.CreatedAt = sel.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromStoredSelections converts recorded selections into API DTOs.
func FromStoredSelections(sels []*store.Selection) []Selection {
	if len(sels) == 0 {
		return nil
	}
	out := make([]Selection, 0, len(sels))
	for _, sel := range sels {
		out = append(out, FromStoredSelection(sel))
	}
	return out
}

// PlannedSelection builds the API representation of a program that was
// computed but not recorded.
func PlannedSelection(wardID int64, date time.Time, selCtx selection.Context, hymns []hymnal.Hymn) Selection {
	selected := Positioned(hymns)
	return Selection{
		WardID:      wardID,
		Date:        date.Format(dateFormat),
		SundayLabel: dateutil.FormatSunday(date),
		FirstSunday: selCtx.FirstSunday,
		Festive:     selCtx.Festive,
		Festivity:   selCtx.EffectiveFestivity().String(),
		HymnCount:   len(selected),
		Hymns:       selected,
	}
}

// Positioned numbers an ordered selection starting at slot 1.
func Positioned(hymns []hymnal.Hymn) []SelectedHymn {
	selected := make([]SelectedHymn, 0, len(hymns))
	for i, hymn := range hymns {
		selected = append(selected, SelectedHymn{
			Position: i + 1,
			Number:   hymn.Number,
			Title:    hymn.Title,
			Category: hymn.Category,
		})
	}
	return selected
}

// FromWard converts a ward record to its API representation.
func FromWard(ward *store.Ward) Ward {
	if ward == nil {
		return Ward{}
	}
	dto := Ward{
		ID:        ward.ID,
		Name:      ward.Name,
		StakeID:   ward.StakeID,
		StakeName: ward.StakeName,
	}
	if !ward.CreatedAt.IsZero() {
		dto.CreatedAt = ward.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromWards converts ward records into API DTOs.
func FromWards(wards []*store.Ward) []Ward {
	if len(wards) == 0 {
		return nil
	}
	out := make([]Ward, 0, len(wards))
	for _, ward := range wards {
		out = append(out, FromWard(ward))
	}
	return out
}

// FromStake converts a stake record to its API representation.
func FromStake(stake *store.Stake) Stake {
	if stake == nil {
		return Stake{}
	}
	dto := Stake{
		ID:        stake.ID,
		Name:      stake.Name,
		AreaID:    stake.AreaID,
		AreaName:  stake.AreaName,
		WardCount: stake.WardCount,
	}
	if !stake.CreatedAt.IsZero() {
		dto.CreatedAt = stake.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromStakes converts stake records into API DTOs.
func FromStakes(stakes []*store.Stake) []Stake {
	if len(stakes) == 0 {
		return nil
	}
	out := make([]Stake, 0, len(stakes))
	for _, stake := range stakes {
		out = append(out, FromStake(stake))
	}
	return out
}

// FromArea converts an area record to its API representation.
func FromArea(area *store.Area) Area {
	if area == nil {
		return Area{}
	}
	dto := Area{
		ID:         area.ID,
		Name:       area.Name,
		StakeCount: area.StakeCount,
	}
	if !area.CreatedAt.IsZero() {
		dto.CreatedAt = area.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromAreas converts area records into API DTOs.
func FromAreas(areas []*store.Area) []Area {
	if len(areas) == 0 {
		return nil
	}
	out := make([]Area, 0, len(areas))
	for _, area := range areas {
		out = append(out, FromArea(area))
	}
	return out
}

// FromUser converts an account record to its API representation. The
// password hash never leaves the store layer.
func FromUser(user *store.User) User {
	if user == nil {
		return User{}
	}
	wardIDs := user.WardIDs
	if wardIDs == nil {
		wardIDs = []int64{}
	}
	dto := User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role.String(),
		Active:   user.Active,
		AreaID:   user.AreaID,
		StakeID:  user.StakeID,
		WardIDs:  wardIDs,
	}
	if !user.CreatedAt.IsZero() {
		dto.CreatedAt = user.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !user.UpdatedAt.IsZero() {
		dto.UpdatedAt = user.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromUsers converts account records into API DTOs.
func FromUsers(users []*store.User) []User {
	if len(users) == 0 {
		return nil
	}
	out := make([]User, 0, len(users))
	for _, user := range users {
		out = append(out, FromUser(user))
	}
	return out
}

// FromLogin builds the login payload around a freshly issued token.
func FromLogin(token string, expires time.Time, user *store.User) LoginResponse {
	return LoginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expires.UTC().Format(dateTimeFormat),
		User:      FromUser(user),
	}
}

// FromIndex builds the catalog stats payload with per-category counts.
func FromIndex(index *hymnal.Index) CatalogStats {
	if index == nil {
		return CatalogStats{Categories: map[string]int{}, Tags: []string{}}
	}
	stats := index.Stats()
	categories := make(map[string]int, stats.Categories)
	for _, name := range index.Categories() {
		categories[name] = len(index.ByCategory(name))
	}
	tags := index.Tags()
	if tags == nil {
		tags = []string{}
	}
	return CatalogStats{
		Total:      stats.TotalHymns,
		Sacramento: stats.SacramentoHymns,
		Categories: categories,
		Tags:       tags,
	}
}
