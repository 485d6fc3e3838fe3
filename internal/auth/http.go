// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package auth provides the HTTP delivery layer for the identity engine.

It implements the gateway for the account lifecycle—from registration and
verification through login, two-factor step-up, and password recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Session tokens are returned in the response body as bearer
    credentials.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/centinela/iam/internal/platform/constants"
	"github.com/centinela/iam/internal/platform/middleware"
	requestutil "github.com/centinela/iam/internal/platform/request"
	"github.com/centinela/iam/internal/platform/respond"
	"github.com/centinela/iam/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements identity-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the account lifecycle entry
// points (registration, verification, login, recovery, profile).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with identity routes.
//
// # Endpoints
//   - POST /register   : Creates a new account and sends the code.
//   - POST /verify     : Confirms the code, activates the account.
//   - POST /login      : Authenticates, possibly arming a 2FA challenge.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/verify", handler.verify)
	router.Post("/resend", handler.resend)
	router.Post("/login", handler.login)
	router.Post("/two-factor", handler.twoFactor)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/toggle-two-factor", handler.toggleTwoFactor)
		r.Post("/change-password", handler.changePassword)
		r.Get("/profile", handler.getProfile)
		r.Patch("/profile", handler.updateProfile)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name      string `json:"name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CellPhone string `json:"cell_phone"`
	Landline  string `json:"landline"`
	IDType    string `json:"id_type"`
	IDNumber  string `json:"id_number"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Method   string `json:"method"`
}

type twoFactorRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type toggleTwoFactorRequest struct {
	Enabled *bool `json:"enabled"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateProfileRequest struct {
	Name      *string `json:"name"`
	LastName  *string `json:"last_name"`
	Gender    *string `json:"gender"`
	CellPhone *string `json:"cell_phone"`
	Landline  *string `json:"landline"`
	IDType    *string `json:"id_type"`
	IDNumber  *string `json:"id_number"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, persists a new Guest account, and dispatches
a verification code to the provided email address.

Request:
  - Body: registerRequest

Response:
  - 201: User: Created account profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
  - 503: DeliveryFailed: Account created, verification email lost
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:      input.Name,
		LastName:  input.LastName,
		Gender:    input.Gender,
		Email:     input.Email,
		Password:  input.Password,
		CellPhone: input.CellPhone,
		Landline:  input.Landline,
		IDType:    input.IDType,
		IDNumber:  input.IDNumber,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Verify activates an account using the emailed registration code.

POST /api/v1/auth/verify

Description: Consumes the single-use code and returns a session token so the
user is logged in immediately after verification.

Request:
  - Body: verifyRequest (Email, Code)

Response:
  - 200: Session: Access token and user profile
  - 409: ErrConflict: Already verified, or invalid/expired code
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, constants.CodeDigits)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Verify(request.Context(), input.Email, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

/*
Resend issues a fresh verification code for an unverified account.

POST /api/v1/auth/resend

Description: Throttled per email. Replaces the previous code.

Request:
  - Body: resendRequest (Email)

Response:
  - 200: Success: Code re-sent
  - 409: ErrConflict: Account already verified
  - 429: RateLimited: Cooldown window still active
*/
func (handler *Handler) resend(writer http.ResponseWriter, request *http.Request) {
	var input resendRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Resend(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Verification code sent",
	})
}

/*
Login authenticates a user with email and password.

POST /api/v1/auth/login

Description: Returns a session token directly, or arms a two-factor
challenge describing the delivery channel and expiry. The code itself never
appears in the response.

Request:
  - Body: loginRequest (Email, Password, Method)

Response:
  - 200: Session or Challenge
  - 401: ErrUnauthorized: Invalid credentials or unverified account
  - 409: ErrConflict: SMS requested with no phone number on file
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if input.Method != "" {
		validator.OneOf(FieldMethod, input.Method, string(ChannelEmail), string(ChannelSMS))
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Method:   Channel(input.Method),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if outcome.Challenge != nil {
		respond.OK(writer, map[string]any{
			"two_factor_required": true,
			FieldMethod:           outcome.Challenge.Method,
			FieldExpiresAt:        outcome.Challenge.ExpiresAt,
		})
		return
	}

	respond.OK(writer, sessionPayload(outcome.Session))
}

/*
TwoFactor completes a pending two-factor login.

POST /api/v1/auth/two-factor

Description: Consumes the single-use step-up code and issues the session.

Request:
  - Body: twoFactorRequest (Email, Code)

Response:
  - 200: Session: Access token and user profile
  - 409: ErrConflict: Invalid or expired code
*/
func (handler *Handler) twoFactor(writer http.ResponseWriter, request *http.Request) {
	var input twoFactorRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, constants.CodeDigits)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.TwoFactor(request.Context(), input.Email, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

/*
ToggleTwoFactor enables or disables the second factor for the caller.

POST /api/v1/auth/toggle-two-factor

Description: Idempotent set on the authenticated account.

Request:
  - Body: toggleTwoFactorRequest (Enabled)

Response:
  - 200: Success: Requirement updated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) toggleTwoFactor(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input toggleTwoFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Enabled == nil {
		respond.Error(writer, request, validate.RequiredError(FieldEnabled, "is required"))
		return
	}

	if err := handler.authService.ToggleTwoFactor(request.Context(), claims.Email, *input.Enabled); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Two-factor requirement updated",
		FieldEnabled: *input.Enabled,
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Persists a one-hour reset token and emails the recovery link.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Reset link sent
  - 404: ErrNotFound: No account with this email
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password reset link sent",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the single-use reset token and updates the password.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 401: ErrUnauthorized: Invalid, expired, or consumed token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Wrong current password or no session
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), userID, input.OldPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
GetProfile returns the authenticated user's own account.

GET /api/v1/auth/profile

Response:
  - 200: User: Account profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile merges whitelisted profile fields into the caller's account.

PATCH /api/v1/auth/profile

Description: Absent fields stay untouched; non-whitelisted fields are
silently ignored by construction.

Request:
  - Body: updateProfileRequest (partial)

Response:
  - 200: User: Updated profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.UpdateProfile(request.Context(), userID, ProfileInput{
		Name:      input.Name,
		LastName:  input.LastName,
		Gender:    input.Gender,
		CellPhone: input.CellPhone,
		Landline:  input.Landline,
		IDType:    input.IDType,
		IDNumber:  input.IDNumber,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// sessionPayload shapes an established session for the wire.
func sessionPayload(session *Session) map[string]any {
	return map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(time.Until(session.ExpiresAt) / time.Second),
		FieldUser:        session.User,
	}
}
