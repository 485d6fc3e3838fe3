// Copyright (c) 2026 Centinela. All rights reserved.

package permission

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/centinela/iam/internal/guard"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for the permission catalog.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new permission [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput holds the data for a new permission.
type CreateInput struct {
	URL         string
	Method      string
	Module      string
	Description string
}

/*
Create registers a new guarded endpoint shape.

Description: The URL is normalized with the guard's rules so write-time
patterns and request-time lookups always agree. An empty module is derived
from the URL the same way the guard derives it.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Permission: Created entity
  - error: Validation, Conflict, or persistence failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Permission, error) {
	validator := &validate.Validator{}
	validator.Required(FieldURL, input.URL).
		Required(FieldMethod, input.Method).
		OneOf(FieldMethod, input.Method,
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	module := input.Module
	if module == "" {
		module = guard.ModuleOf(input.URL)
	}

	permission := &Permission{
		ID:          uuid.New(),
		URL:         guard.NormalizePath(input.URL),
		Method:      input.Method,
		Module:      module,
		Description: input.Description,
	}

	if err := service.repo.Create(context, permission); err != nil {
		return nil, err
	}

	service.logger.Info("permission_created",
		slog.String("permission_id", permission.ID),
		slog.String("url", permission.URL),
		slog.String("method", permission.Method),
		slog.String("module", permission.Module),
	)

	return permission, nil
}

/*
List retrieves a filtered page of permissions.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Permission: Page of permissions
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Permission, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
Get retrieves a permission by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Permission: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*Permission, error) {
	return service.repo.FindByID(context, id)
}

// UpdateInput holds the partially-updatable permission fields.
type UpdateInput struct {
	URL         *string
	Method      *string
	Module      *string
	Description *string
}

/*
Update modifies a permission's coordinates or description.

Description: A changed URL is re-normalized before it is stored.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *Permission: Updated entity
  - error: Validation, NotFound, Conflict, or persistence failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Permission, error) {
	permission, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.URL != nil {
		validator := &validate.Validator{}
		validator.Required(FieldURL, *input.URL)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		permission.URL = guard.NormalizePath(*input.URL)
	}
	if input.Method != nil {
		validator := &validate.Validator{}
		validator.OneOf(FieldMethod, *input.Method,
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		permission.Method = *input.Method
	}
	if input.Module != nil {
		permission.Module = *input.Module
	}
	if input.Description != nil {
		permission.Description = *input.Description
	}

	if err := service.repo.Update(context, permission); err != nil {
		return nil, err
	}

	return permission, nil
}

/*
Delete removes a permission that no access references.

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

	service.logger.Info("permission_deleted", slog.String("permission_id", id))
	return nil
}
