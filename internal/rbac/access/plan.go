// Copyright (c) 2026 Centinela. All rights reserved.

package access

// refSide names which endpoint table a back-reference change applies to.
type refSide string

const (
	sideRole       refSide = "role"
	sidePermission refSide = "permission"
)

// refChange is one back-reference adjustment: attach or detach the access ID
// on a single endpoint row.
type refChange struct {
	Side   refSide
	RowID  string
	Attach bool
}

// planAttach returns the changes that register a new grant on both endpoints.
func planAttach(access *Access) []refChange {
	return []refChange{
		{Side: sideRole, RowID: access.RoleID, Attach: true},
		{Side: sidePermission, RowID: access.PermissionID, Attach: true},
	}
}

// planDetach returns the changes that unregister a grant from both endpoints.
func planDetach(access *Access) []refChange {
	return []refChange{
		{Side: sideRole, RowID: access.RoleID, Attach: false},
		{Side: sidePermission, RowID: access.PermissionID, Attach: false},
	}
}

// planMove returns the changes that relocate a grant between endpoints.
//
// Only the sides that actually changed are touched: re-pointing the role
// leaves the permission arrays alone, and vice versa. Detaches are ordered
// before attaches so a failed attach aborts with nothing half-moved.
func planMove(oldAccess, newAccess *Access) []refChange {
	changes := []refChange{}

	if oldAccess.RoleID != newAccess.RoleID {
		changes = append(changes, refChange{Side: sideRole, RowID: oldAccess.RoleID, Attach: false})
	}
	if oldAccess.PermissionID != newAccess.PermissionID {
		changes = append(changes, refChange{Side: sidePermission, RowID: oldAccess.PermissionID, Attach: false})
	}
	if oldAccess.RoleID != newAccess.RoleID {
		changes = append(changes, refChange{Side: sideRole, RowID: newAccess.RoleID, Attach: true})
	}
	if oldAccess.PermissionID != newAccess.PermissionID {
		changes = append(changes, refChange{Side: sidePermission, RowID: newAccess.PermissionID, Attach: true})
	}

	return changes
}
