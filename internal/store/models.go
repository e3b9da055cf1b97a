package store

import (
	"time"

	"innario/internal/auth"
	"innario/internal/hymnal"
)

// Area is a geographic area containing stakes. A zero ID on any model means
// the row has not been persisted; zero foreign keys mean "unassigned".
type Area struct {
	ID         int64
	Name       string
	CreatedAt  time.Time
	StakeCount int
}

// Stake is a stake containing wards, optionally assigned to an area.
type Stake struct {
	ID        int64
	Name      string
	AreaID    int64
	AreaName  string
	CreatedAt time.Time
	WardCount int
}

// Ward is a congregation whose hymn selections are tracked.
type Ward struct {
	ID        int64
	Name      string
	StakeID   int64
	StakeName string
	CreatedAt time.Time
}

// User is an account that can plan hymns for the wards its role grants
// access to. AreaID is set for area managers, StakeID for stake managers,
// and WardIDs lists explicit assignments for ward users.
type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	FullName       string
	Role           auth.Role
	Active         bool
	AreaID         int64
	StakeID        int64
	WardIDs        []int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Selection is one recorded set of hymns for a ward's Sunday service.
type Selection struct {
	ID            int64
	WardID        int64
	SelectionDate time.Time
	FirstSunday   bool
	Festive       bool
	Festivity     hymnal.Festivity
	CreatedAt     time.Time
	Hymns         []SelectedHymn
}

// SelectedHymn is one hymn of a selection with the catalog snapshot taken at
// recording time. Positions are 1-based; position 2 is the sacrament hymn.
type SelectedHymn struct {
	ID       int64
	Number   int
	Title    string
	Category string
	Position int
}
