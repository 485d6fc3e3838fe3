// Copyright (c) 2026 Centinela. All rights reserved.

package sec

// # Role Names

// RoleName is the closed enumeration of role names known to the platform.
//
// Role records live in the database, but hierarchy decisions are made on the
// name. Using a dedicated type instead of raw string comparisons keeps the
// hierarchy checks exhaustive and typo-free.
type RoleName string

const (
	// Unrestricted system access
	RoleAdministrator RoleName = "Administrator"

	// Can manage users and grants, except Administrator accounts
	RoleManager RoleName = "Manager"

	// Default role assigned on self-registration
	RoleGuest RoleName = "Guest"
)

// IsValid reports whether the name is one of the known roles.
func (r RoleName) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleGuest:
		return true
	default:
		return false
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r RoleName) AtLeast(target RoleName) bool {
	return r.level() >= target.level()
}

// CanManage reports whether the current role may create, update, or delete an
// account holding the target role.
//
// Only Administrator and Manager manage accounts at all, and a Manager can
// never touch an Administrator.
func (r RoleName) CanManage(target RoleName) bool {
	switch r {
	case RoleAdministrator:
		return true
	case RoleManager:
		return target != RoleAdministrator
	default:
		return false
	}
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r RoleName) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdministrator:
		return 30
	case RoleManager:
		return 20
	case RoleGuest:
		return 10
	default:
		return 0
	}
}
