/*
Package permission provides the HTTP interface for the permission catalog.

# Routing Strategy

All endpoints are mounted behind authentication and the authorization guard.
Listing supports module and method filters for matrix audits.
*/
package permission

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/centinela/iam/internal/platform/request"
	"github.com/centinela/iam/internal/platform/respond"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for permission operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new permission [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with permission endpoints.
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
	URL         string `json:"url"`
	Method      string `json:"method"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

type updateRequest struct {
	URL         *string `json:"url"`
	Method      *string `json:"method"`
	Module      *string `json:"module"`
	Description *string `json:"description"`
}

/*
GET /api/v1/permissions.

Description: Retrieves a paginated list of permissions, optionally filtered
by module and/or method.

Request:
  - module: string (exact match)
  - method: string (exact match)
  - limit: int
  - page: int

Response:
  - 200: []Permission: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Module: queryParams.Get("module"),
		Method: queryParams.Get("method"),
	}

	permissions, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, permissions, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/permissions.

Description: Registers a new guarded endpoint shape. The URL is normalized
before storage.

Request:
  - Body: createRequest (URL, Method, Module, Description)

Response:
  - 201: Permission: Created entity
  - 400: ErrInvalidJSON: Missing URL or unknown method
  - 409: ErrConflict: Coordinates already registered
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	permission, err := handler.service.Create(request.Context(), CreateInput{
		URL:         input.URL,
		Method:      input.Method,
		Module:      input.Module,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, permission)
}

/*
GET /api/v1/permissions/{id}.

Response:
  - 200: Permission: Success
  - 404: ErrNotFound: Permission not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	permission, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, permission)
}

/*
PATCH /api/v1/permissions/{id}.

Request:
  - Body: updateRequest (partial)

Response:
  - 200: Permission: Updated entity
  - 404: ErrNotFound: Permission not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	permission, err := handler.service.Update(request.Context(), id, UpdateInput{
		URL:         input.URL,
		Method:      input.Method,
		Module:      input.Module,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, permission)
}

/*
DELETE /api/v1/permissions/{id}.

Response:
  - 204: No Content: Permission removed
  - 404: ErrNotFound: Permission not found
  - 409: ErrConflict: Permission still referenced by accesses
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
