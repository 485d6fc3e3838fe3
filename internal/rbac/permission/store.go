// Copyright (c) 2026 Centinela. All rights reserved.

package permission

import "context"

// Repository defines the data access contract for permissions.
type Repository interface {

	/*
		Create persists a new permission.

		Parameters:
		  - context: context.Context
		  - permission: *Permission

		Returns:
		  - error: Conflict on a duplicate (url, method, module) triple,
		    or persistence failures
	*/
	Create(context context.Context, permission *Permission) error

	/*
		FindByID returns the permission with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Permission: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Permission, error)

	/*
		List returns a filtered page of permissions plus the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit, offset: int

		Returns:
		  - []*Permission: Page of permissions
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Permission, int, error)

	/*
		Update persists changes to the permission's mutable fields.

		Parameters:
		  - context: context.Context
		  - permission: *Permission

		Returns:
		  - error: Conflict, apperr.NotFound, or persistence failures
	*/
	Update(context context.Context, permission *Permission) error

	/*
		Delete removes an unreferenced permission.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Conflict while accesses reference it (state left
		    unchanged), apperr.NotFound, or failures
	*/
	Delete(context context.Context, id string) error
}
