// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package role provides the HTTP interface for role management.

All endpoints are protected: the router is mounted behind authentication and
the authorization guard, so reaching a handler already implies a matching
access grant.
*/
package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/centinela/iam/internal/platform/request"
	"github.com/centinela/iam/internal/platform/respond"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for role operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new role [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with role endpoints.
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

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

/*
GET /api/v1/roles.

Description: Retrieves a paginated list of roles.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Role: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	roles, total, err := handler.service.List(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, roles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/roles.

Description: Registers a new role.

Request:
  - Body: createRequest (Name, Description)

Response:
  - 201: Role: Created entity
  - 400: ErrInvalidJSON: Name outside the closed enumeration
  - 409: ErrConflict: Role name already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	role, err := handler.service.Create(request.Context(), CreateInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

/*
GET /api/v1/roles/{id}.

Response:
  - 200: Role: Success
  - 404: ErrNotFound: Role not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	role, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

/*
PATCH /api/v1/roles/{id}.

Description: Updates role metadata. Back-reference arrays are not reachable
from this endpoint.

Request:
  - Body: updateRequest (partial)

Response:
  - 200: Role: Updated entity
  - 404: ErrNotFound: Role not found
  - 409: ErrConflict: New name already taken
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	role, err := handler.service.Update(request.Context(), id, UpdateInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

/*
DELETE /api/v1/roles/{id}.

Response:
  - 204: No Content: Role removed
  - 404: ErrNotFound: Role not found
  - 409: ErrConflict: Role still referenced by users or accesses
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
