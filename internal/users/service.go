// Copyright (c) 2026 Centinela. All rights reserved.

package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/constants"
	"github.com/centinela/iam/internal/platform/sec"
	"github.com/centinela/iam/internal/platform/validate"
	"github.com/centinela/iam/pkg/pointer"
	"github.com/centinela/iam/pkg/uuid"
)

// # Service Layer

// Mailer delivers plain-text email through the notification gateway.
type Mailer interface {
	SendEmail(context context.Context, address, subject, plainText string) error
}

// Service orchestrates administrative account operations.
//
// Every mutating method takes the caller's role so the hierarchy rule is
// enforced at the source, independent of what the route guard allows: a
// Manager holding a grant on /api/v1/users still cannot touch an
// Administrator account.
type Service struct {
	repo   Repository
	mailer Mailer
	logger *slog.Logger
}

// NewService constructs a new users [Service].
func NewService(repo Repository, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}

// errHierarchy is the uniform refusal when the caller's role may not manage
// the target account's role.
func errHierarchy() error {
	return apperr.Forbidden("Insufficient role to manage this account")
}

// CreateInput carries the fields for an admin-created account.
type CreateInput struct {
	Name      string
	LastName  string
	Gender    string
	Email     string
	Password  string
	CellPhone string
	Landline  string
	IDType    string
	IDNumber  string
	Role      string
}

// UpdateInput carries the admin-editable profile fields. Nil members keep
// the stored value; Role, when set, moves the account to another role.
type UpdateInput struct {
	Name      *string
	LastName  *string
	Gender    *string
	Email     *string
	CellPhone *string
	Landline  *string
	IDType    *string
	IDNumber  *string
	Role      *string
}

/*
Create registers a new account with a caller-chosen role.

Description: The account starts unverified and goes through the same email
verification flow as self-registration; only the role differs. The user row
and the role's user_ids back-reference commit in one transaction, the
verification email goes out after the commit.

Parameters:
  - context: context.Context
  - callerRole: sec.RoleName (from the authenticated caller's claims)
  - input: CreateInput

Returns:
  - *User: Created account
  - error: Validation, Forbidden (hierarchy), NotFound (role), Conflict
    (duplicate email), DeliveryFailed (account persisted, email lost), or
    persistence failures
*/
func (service *Service) Create(context context.Context, callerRole sec.RoleName, input CreateInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldRole, input.Role).
		OneOf(FieldRole, input.Role,
			string(sec.RoleAdministrator), string(sec.RoleManager), string(sec.RoleGuest))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if !callerRole.CanManage(sec.RoleName(input.Role)) {
		return nil, errHierarchy()
	}

	role, err := service.repo.FindRoleByName(context, input.Role)
	if err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	code, err := sec.GenerateNumericCode(constants.CodeDigits)
	if err != nil {
		return nil, fmt.Errorf("users_service_code_generation_failed: %w", err)
	}

	user := &User{
		ID:                      uuid.New(),
		Name:                    input.Name,
		LastName:                input.LastName,
		Gender:                  input.Gender,
		Email:                   input.Email,
		Verified:                false,
		CellPhone:               input.CellPhone,
		Landline:                input.Landline,
		IDType:                  input.IDType,
		IDNumber:                input.IDNumber,
		PasswordHash:            passwordHash,
		VerificationCode:        code,
		VerificationCodeExpires: time.Now().Add(constants.VerificationCodeTTL),
		Role:                    *role,
	}

	if err := service.repo.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("admin_user_created",
		slog.String("user_id", user.ID),
		slog.String("role", role.Name),
	)

	// Post-commit side effect. The account stays; only the delivery failed.
	err = service.mailer.SendEmail(context, user.Email,
		"Verify your Centinela account",
		fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(constants.VerificationCodeTTL.Minutes())))
	if err != nil {
		return nil, apperr.DeliveryFailed("Account created but the verification email could not be sent", err)
	}

	return user, nil
}

/*
List retrieves a page of accounts.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*User: Page of accounts with role references
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, limit, offset int) ([]*User, int, error) {
	return service.repo.List(context, limit, offset)
}

/*
Get retrieves one account by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated account
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*User, error) {
	return service.repo.FindByID(context, id)
}

/*
Update edits an account's profile and, optionally, moves it to another role.

Description: The hierarchy rule applies twice: the caller must be able to
manage the account's current role, and, when a role change is requested,
the new role as well.

Parameters:
  - context: context.Context
  - callerRole: sec.RoleName
  - id: string
  - input: UpdateInput (partial)

Returns:
  - *User: Updated account
  - error: Validation, Forbidden, NotFound, Conflict, persistence failures
*/
func (service *Service) Update(context context.Context, callerRole sec.RoleName, id string, input UpdateInput) (*User, error) {
	user, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !callerRole.CanManage(sec.RoleName(user.Role.Name)) {
		return nil, errHierarchy()
	}

	if email := pointer.Fallback(input.Email, user.Email); email != user.Email {
		validator := &validate.Validator{}
		validator.Email(FieldEmail, email)
		if err := validator.Err(); err != nil {
			return nil, err
		}
	}

	// The whole request is vetted before anything is written: a rejected
	// role change must not leave behind a committed profile edit.
	var newRole *RoleRef
	if input.Role != nil && *input.Role != user.Role.Name {
		validator := &validate.Validator{}
		validator.OneOf(FieldRole, *input.Role,
			string(sec.RoleAdministrator), string(sec.RoleManager), string(sec.RoleGuest))
		if err := validator.Err(); err != nil {
			return nil, err
		}
		if !callerRole.CanManage(sec.RoleName(*input.Role)) {
			return nil, errHierarchy()
		}

		newRole, err = service.repo.FindRoleByName(context, *input.Role)
		if err != nil {
			return nil, err
		}
	}

	user.Name = pointer.Fallback(input.Name, user.Name)
	user.LastName = pointer.Fallback(input.LastName, user.LastName)
	user.Gender = pointer.Fallback(input.Gender, user.Gender)
	user.Email = pointer.Fallback(input.Email, user.Email)
	user.CellPhone = pointer.Fallback(input.CellPhone, user.CellPhone)
	user.Landline = pointer.Fallback(input.Landline, user.Landline)
	user.IDType = pointer.Fallback(input.IDType, user.IDType)
	user.IDNumber = pointer.Fallback(input.IDNumber, user.IDNumber)

	if err := service.repo.UpdateProfile(context, user); err != nil {
		return nil, err
	}

	if newRole != nil {
		if err := service.repo.ChangeRole(context, user.ID, user.Role.ID, newRole.ID); err != nil {
			return nil, err
		}
		user.Role = *newRole

		service.logger.Info("admin_user_role_changed",
			slog.String("user_id", user.ID),
			slog.String("role", newRole.Name),
		)
	}

	return user, nil
}

/*
Delete removes an account.

Parameters:
  - context: context.Context
  - callerRole: sec.RoleName
  - id: string

Returns:
  - error: Forbidden (hierarchy), apperr.NotFound, persistence failures
*/
func (service *Service) Delete(context context.Context, callerRole sec.RoleName, id string) error {
	user, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !callerRole.CanManage(sec.RoleName(user.Role.Name)) {
		return errHierarchy()
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("admin_user_deleted", slog.String("user_id", id))
	return nil
}
