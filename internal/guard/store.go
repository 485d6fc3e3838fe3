// Copyright (c) 2026 Centinela. All rights reserved.

package guard

import "context"

// Directory is the read-only matrix lookup contract the guard needs.
//
// All three lookups are plain reads on the request path; no transaction is
// involved.
type Directory interface {

	/*
		UserRole resolves the role ID currently assigned to a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - string: Role ID
		  - error: apperr.NotFound when the user or its role is missing,
		    or retrieval failures
	*/
	UserRole(context context.Context, userID string) (string, error)

	/*
		PermissionID resolves a permission by its exact matrix coordinates.

		Parameters:
		  - context: context.Context
		  - url: string (normalized pattern)
		  - method: string (HTTP verb)
		  - module: string

		Returns:
		  - string: Permission ID
		  - error: apperr.NotFound on a matrix miss, or retrieval failures
	*/
	PermissionID(context context.Context, url, method, module string) (string, error)

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
	HasAccess(context context.Context, roleID, permissionID string) (bool, error)
}
