// Copyright (c) 2026 Centinela. All rights reserved.

package role

import (
	"context"
	"log/slog"

	"github.com/centinela/iam/internal/platform/sec"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for role management.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new role [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput holds the data for a new role.
type CreateInput struct {
	Name        string
	Description string
}

/*
Create registers a new role in the matrix.

Description: Role names form a closed enumeration; anything outside it is a
validation failure, and duplicates surface as Conflict from the unique index.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Role: Created entity
  - error: Validation, Conflict, or persistence failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Role, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		OneOf(FieldName, input.Name,
			string(sec.RoleAdministrator), string(sec.RoleManager), string(sec.RoleGuest))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	role := &Role{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
	}

	if err := service.repo.Create(context, role); err != nil {
		return nil, err
	}

	service.logger.Info("role_created",
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
	)

	return role, nil
}

/*
List retrieves a page of roles.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*Role: Page of roles
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, limit, offset int) ([]*Role, int, error) {
	return service.repo.List(context, limit, offset)
}

/*
Get retrieves a role by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Role: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*Role, error) {
	return service.repo.FindByID(context, id)
}

// UpdateInput holds the partially-updatable role metadata.
type UpdateInput struct {
	Name        *string
	Description *string
}

/*
Update modifies a role's metadata.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *Role: Updated entity
  - error: Validation, NotFound, Conflict, or persistence failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Role, error) {
	role, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		validator := &validate.Validator{}
		validator.Required(FieldName, *input.Name).
			OneOf(FieldName, *input.Name,
				string(sec.RoleAdministrator), string(sec.RoleManager), string(sec.RoleGuest))
		if err := validator.Err(); err != nil {
			return nil, err
		}
		role.Name = *input.Name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}

	if err := service.repo.Update(context, role); err != nil {
		return nil, err
	}

	return role, nil
}

/*
Delete removes a role that no user or access references.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Conflict while referenced, NotFound, or persistence failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("role_deleted", slog.String("role_id", id))
	return nil
}
