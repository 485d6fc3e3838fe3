// Copyright (c) 2026 Centinela. All rights reserved.

package users

import "context"

// Repository defines persistence operations for administrative account
// management.
//
// Create, ChangeRole and Delete also maintain the user_ids back-reference
// array on the owning role rows; each contract notes its transactional
// behavior.
type Repository interface {

	// Create inserts the user and appends its ID to the role's user_ids
	// inside one transaction. A duplicate email surfaces as Conflict, a
	// missing role as NotFound, and either aborts the whole transaction.
	Create(ctx context.Context, user *User) error

	// FindByID returns the user joined with its role, or apperr.NotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// List returns a page of users with their roles plus the total count.
	List(ctx context.Context, limit, offset int) ([]*User, int, error)

	// UpdateProfile persists the editable profile columns of the user.
	// Role membership is not touched; use ChangeRole for that.
	UpdateProfile(ctx context.Context, user *User) error

	// ChangeRole moves the user to a new role: the user row and both
	// user_ids arrays (old role removed, new role appended) change in one
	// transaction. A missing new role aborts with apperr.NotFound.
	ChangeRole(ctx context.Context, userID, oldRoleID, newRoleID string) error

	// Delete removes the user row and pulls its ID from the role's
	// user_ids array inside one transaction.
	Delete(ctx context.Context, id string) error

	// FindRoleByName resolves a role name to its reference.
	FindRoleByName(ctx context.Context, name string) (*RoleRef, error)
}
