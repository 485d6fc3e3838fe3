// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package access manages the grants linking roles to permissions.

An access row is the edge of the matrix: role X may exercise permission Y.
Every mutation also maintains the back-reference arrays on both endpoints
(roles.access_ids and permissions.access_ids) inside the same transaction,
so the invariant holds at every commit point: an access ID appears in exactly
the arrays of the role and permission it references.
*/
package access

import "time"

// Access represents one grant in the matrix.
type Access struct {
	ID           string    `json:"id"`
	RoleID       string    `json:"role_id"`
	PermissionID string    `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldRoleID       = "role_id"
	FieldPermissionID = "permission_id"
)
