// Copyright (c) 2026 Centinela. All rights reserved.

package role

import "context"

// Repository defines the data access contract for roles.
type Repository interface {

	/*
		Create persists a new role.

		Parameters:
		  - context: context.Context
		  - role: *Role

		Returns:
		  - error: Conflict on duplicate name, or persistence failures
	*/
	Create(context context.Context, role *Role) error

	/*
		FindByID returns the role with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Role: Hydrated entity with both back-reference arrays
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Role, error)

	/*
		List returns a page of roles plus the total count.

		Parameters:
		  - context: context.Context
		  - limit, offset: int

		Returns:
		  - []*Role: Page of roles
		  - int: Total role count
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]*Role, int, error)

	/*
		Update persists changes to the role's mutable metadata.

		Parameters:
		  - context: context.Context
		  - role: *Role

		Returns:
		  - error: Conflict on duplicate name, or persistence failures
	*/
	Update(context context.Context, role *Role) error

	/*
		Delete removes an unreferenced role.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Conflict while users or accesses still reference the
		    role (state left unchanged), apperr.NotFound, or failures
	*/
	Delete(context context.Context, id string) error
}
