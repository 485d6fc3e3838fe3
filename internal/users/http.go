// Copyright (c) 2026 Centinela. All rights reserved.

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/centinela/iam/internal/platform/request"
	"github.com/centinela/iam/internal/platform/respond"
	"github.com/centinela/iam/internal/platform/sec"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for admin user operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new users [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with admin user endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// callerRole extracts the authenticated caller's role from the request
// claims. The auth middleware guarantees claims are present on this router.
func callerRole(request *http.Request) (sec.RoleName, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return sec.RoleName(claims.Role), nil
}

// # Request Payloads

type createRequest struct {
	Name      string `json:"name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CellPhone string `json:"cell_phone"`
	Landline  string `json:"landline"`
	IDType    string `json:"id_type"`
	IDNumber  string `json:"id_number"`
	Role      string `json:"role"`
}

type updateRequest struct {
	Name      *string `json:"name"`
	LastName  *string `json:"last_name"`
	Gender    *string `json:"gender"`
	Email     *string `json:"email"`
	CellPhone *string `json:"cell_phone"`
	Landline  *string `json:"landline"`
	IDType    *string `json:"id_type"`
	IDNumber  *string `json:"id_number"`
	Role      *string `json:"role"`
}

/*
GET /api/v1/users.

Description: Retrieves a paginated list of accounts.

Request:
  - limit: int
  - page: int

Response:
  - 200: []User: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	users, total, err := handler.service.List(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/users.

Description: Creates an account with a caller-chosen role. The account
starts unverified and receives the same verification email as a
self-registration.

Request:
  - Body: createRequest

Response:
  - 201: User: Created account
  - 403: ErrForbidden: Caller's role may not manage the requested role
  - 409: ErrConflict: Email already registered
  - 503: DeliveryFailed: Account created, verification email lost
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	role, err := callerRole(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.service.Create(request.Context(), role, CreateInput{
		Name:      input.Name,
		LastName:  input.LastName,
		Gender:    input.Gender,
		Email:     input.Email,
		Password:  input.Password,
		CellPhone: input.CellPhone,
		Landline:  input.Landline,
		IDType:    input.IDType,
		IDNumber:  input.IDNumber,
		Role:      input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User: Success
  - 404: ErrNotFound: Account not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	user, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/{id}.

Description: Edits profile fields and, when "role" is present, moves the
account to another role.

Request:
  - Body: updateRequest (partial)

Response:
  - 200: User: Updated account
  - 403: ErrForbidden: Hierarchy rule violated
  - 404: ErrNotFound: Account or role not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	role, err := callerRole(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.service.Update(request.Context(), role, id, UpdateInput{
		Name:      input.Name,
		LastName:  input.LastName,
		Gender:    input.Gender,
		Email:     input.Email,
		CellPhone: input.CellPhone,
		Landline:  input.Landline,
		IDType:    input.IDType,
		IDNumber:  input.IDNumber,
		Role:      input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 204: No Content: Account removed and detached from its role
  - 403: ErrForbidden: Hierarchy rule violated
  - 404: ErrNotFound: Account not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	role, err := callerRole(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), role, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
