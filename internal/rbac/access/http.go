// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package access provides the HTTP interface for grant management.

All endpoints are protected: the router is mounted behind authentication and
the authorization guard.
*/
package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/centinela/iam/internal/platform/request"
	"github.com/centinela/iam/internal/platform/respond"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for access operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new access [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with access endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type grantRequest struct {
	RoleID       string `json:"role_id"`
	PermissionID string `json:"permission_id"`
}

/*
GET /api/v1/accesses.

Description: Retrieves a paginated list of grants.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Access: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	accesses, total, err := handler.service.List(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accesses, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/accesses.

Description: Grants a permission to a role.

Request:
  - Body: grantRequest (RoleID, PermissionID)

Response:
  - 201: Access: Created grant
  - 404: ErrNotFound: Role or permission does not exist
  - 409: ErrConflict: Pair already granted
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input grantRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	access, err := handler.service.Create(request.Context(), GrantInput{
		RoleID:       input.RoleID,
		PermissionID: input.PermissionID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, access)
}

/*
GET /api/v1/accesses/{id}.

Response:
  - 200: Access: Success
  - 404: ErrNotFound: Grant not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	access, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, access)
}

/*
PATCH /api/v1/accesses/{id}.

Description: Re-points the grant at a new role and/or permission. Old and new
back-references move in the same transaction.

Request:
  - Body: grantRequest (full coordinates)

Response:
  - 200: Access: Updated grant
  - 404: ErrNotFound: Grant, role or permission not found
  - 409: ErrConflict: Target pair already granted
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var input grantRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	access, err := handler.service.Update(request.Context(), id, GrantInput{
		RoleID:       input.RoleID,
		PermissionID: input.PermissionID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, access)
}

/*
DELETE /api/v1/accesses/{id}.

Response:
  - 204: No Content: Grant revoked and back-references detached
  - 404: ErrNotFound: Grant not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
