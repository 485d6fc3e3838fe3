// Copyright (c) 2026 Centinela. All rights reserved.

package access

import "context"

// Repository defines the data access contract for access grants.
//
// Every mutation is transactional: the grant row and both endpoint
// back-reference arrays move together or not at all.
type Repository interface {

	/*
		Create persists a new grant and attaches its ID to both endpoints.

		Parameters:
		  - context: context.Context
		  - access: *Access

		Returns:
		  - error: apperr.NotFound when either endpoint is missing (whole
		    transaction aborted, no partial grant), Conflict on a duplicate
		    (role, permission) pair, or persistence failures
	*/
	Create(context context.Context, access *Access) error

	/*
		FindByID returns the grant with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Access: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Access, error)

	/*
		List returns a page of grants plus the total count.

		Parameters:
		  - context: context.Context
		  - limit, offset: int

		Returns:
		  - []*Access: Page of grants
		  - int: Total grant count
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]*Access, int, error)

	/*
		Update re-points a grant and moves its ID between the old and new
		endpoint arrays in one transaction.

		Parameters:
		  - context: context.Context
		  - access: *Access (new coordinates)

		Returns:
		  - error: apperr.NotFound (grant or a new endpoint missing),
		    Conflict, or persistence failures
	*/
	Update(context context.Context, access *Access) error

	/*
		Delete removes a grant and detaches its ID from both endpoints.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}
