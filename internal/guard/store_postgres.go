// Copyright (c) 2026 Centinela. All rights reserved.

package guard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/iam/internal/platform/dberr"
)

// PostgresDirectory implements the Directory interface using pgx.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewDirectory creates a new PostgreSQL implementation of the Directory.
func NewDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

/*
UserRole resolves the role ID currently assigned to a user.

Description: Joins through to the role row so a dangling role_id (role
deleted out-of-band) reads as missing instead of granting access.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - string: Role ID
  - error: apperr.NotFound or retrieval failures
*/
func (directory *PostgresDirectory) UserRole(context context.Context, userID string) (string, error) {
	const query = `
		SELECT r.id
		FROM iam.users u
		JOIN iam.roles r ON r.id = u.role_id
		WHERE u.id = $1`

	var roleID string
	if err := directory.pool.QueryRow(context, query, userID).Scan(&roleID); err != nil {
		return "", dberr.Wrap(err, "Role assignment")
	}
	return roleID, nil
}

/*
PermissionID resolves a permission by its exact matrix coordinates.

Parameters:
  - context: context.Context
  - url: string (normalized pattern)
  - method: string
  - module: string

Returns:
  - string: Permission ID
  - error: apperr.NotFound or retrieval failures
*/
func (directory *PostgresDirectory) PermissionID(context context.Context, url, method, module string) (string, error) {
	const query = `
		SELECT id
		FROM iam.permissions
		WHERE url = $1 AND method = $2 AND module = $3`

	var permissionID string
	if err := directory.pool.QueryRow(context, query, url, method, module).Scan(&permissionID); err != nil {
		return "", dberr.Wrap(err, "Permission")
	}
	return permissionID, nil
}

/*
HasAccess reports whether a grant links the role to the permission.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionID: string

Returns:
  - bool: True when a grant exists
  - error: Retrieval failures
*/
func (directory *PostgresDirectory) HasAccess(context context.Context, roleID, permissionID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM iam.accesses
			WHERE role_id = $1 AND permission_id = $2
		)`

	var allowed bool
	if err := directory.pool.QueryRow(context, query, roleID, permissionID).Scan(&allowed); err != nil {
		return false, dberr.Wrap(err, "Access")
	}
	return allowed, nil
}
