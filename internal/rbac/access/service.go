// Copyright (c) 2026 Centinela. All rights reserved.

package access

import (
	"context"
	"log/slog"

	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for access grants.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new access [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GrantInput identifies the two endpoints of a grant.
type GrantInput struct {
	RoleID       string
	PermissionID string
}

// validateGrant checks both endpoint identifiers.
func validateGrant(input GrantInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldRoleID, input.RoleID).
		UUID(FieldRoleID, input.RoleID).
		Required(FieldPermissionID, input.PermissionID).
		UUID(FieldPermissionID, input.PermissionID)
	return validator.Err()
}

/*
Create links a role to a permission.

Description: The grant row and both back-reference arrays commit together;
a missing role or permission aborts the transaction with no partial grant.

Parameters:
  - context: context.Context
  - input: GrantInput

Returns:
  - *Access: Created grant
  - error: Validation, NotFound (endpoint missing), Conflict (duplicate
    pair), or persistence failures
*/
func (service *Service) Create(context context.Context, input GrantInput) (*Access, error) {
	if err := validateGrant(input); err != nil {
		return nil, err
	}

	access := &Access{
		ID:           uuid.New(),
		RoleID:       input.RoleID,
		PermissionID: input.PermissionID,
	}

	if err := service.repo.Create(context, access); err != nil {
		return nil, err
	}

	service.logger.Info("access_granted",
		slog.String("access_id", access.ID),
		slog.String("role_id", access.RoleID),
		slog.String("permission_id", access.PermissionID),
	)

	return access, nil
}

/*
List retrieves a page of grants.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*Access: Page of grants
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, limit, offset int) ([]*Access, int, error) {
	return service.repo.List(context, limit, offset)
}

/*
Get retrieves a grant by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Access: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*Access, error) {
	return service.repo.FindByID(context, id)
}

/*
Update re-points an existing grant at a new role and/or permission.

Parameters:
  - context: context.Context
  - id: string
  - input: GrantInput (new coordinates)

Returns:
  - *Access: Updated grant
  - error: Validation, NotFound, Conflict, or persistence failures
*/
func (service *Service) Update(context context.Context, id string, input GrantInput) (*Access, error) {
	if err := validateGrant(input); err != nil {
		return nil, err
	}

	access := &Access{
		ID:           id,
		RoleID:       input.RoleID,
		PermissionID: input.PermissionID,
	}

	if err := service.repo.Update(context, access); err != nil {
		return nil, err
	}

	service.logger.Info("access_moved",
		slog.String("access_id", access.ID),
		slog.String("role_id", access.RoleID),
		slog.String("permission_id", access.PermissionID),
	)

	return access, nil
}

/*
Delete revokes a grant.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("access_revoked", slog.String("access_id", id))
	return nil
}
