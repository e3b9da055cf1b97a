package auth

import "fmt"

// Role places a user in the management hierarchy. Higher ranks include every
// permission of the ranks below.
type Role string

const (
	// RoleSuperadmin can manage everything.
	RoleSuperadmin Role = "superadmin"
	// RoleAreaManager manages the stakes of one area.
	RoleAreaManager Role = "area_manager"
	// RoleStakeManager manages the wards of one stake.
	RoleStakeManager Role = "stake_manager"
	// RoleWardUser plans hymns for explicitly assigned wards.
	RoleWardUser Role = "ward_user"
)

var roleRanks = map[Role]int{
	RoleSuperadmin:   4,
	RoleAreaManager:  3,
	RoleStakeManager: 2,
	RoleWardUser:     1,
}

// ParseRole validates a stored or submitted role name.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if _, ok := roleRanks[role]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

func (r Role) String() string { return string(r) }

// Valid reports whether the role is one of the known hierarchy levels.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the numeric hierarchy level, zero for unknown roles.
func (r Role) Rank() int { return roleRanks[r] }

// AtLeast reports whether the role carries the permissions of required.
// Superadmin satisfies every requirement through its rank.
func (r Role) AtLeast(required Role) bool {
	return roleRanks[r] >= roleRanks[required] && roleRanks[r] > 0
}
