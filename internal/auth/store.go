// Copyright (c) 2026 Centinela. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a brand-new user account and registers its ID in the
		owning role's membership list, atomically.

		Parameters:
		  - context: context.Context
		  - user: *User (RoleID must already be resolved)

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		MarkVerified flips the account to verified and consumes the
		verification code (cleared plus epoch-sentinel expiry).

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error

	/*
		SetVerificationCode stores a fresh registration code and its expiry.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - code: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetVerificationCode(context context.Context, userID, code string, expiresAt time.Time) error

	/*
		SetTwoFactorCode stores a fresh login step-up code and its expiry.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - code: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetTwoFactorCode(context context.Context, userID, code string, expiresAt time.Time) error

	/*
		ClearTwoFactorCode consumes the step-up code after successful use.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearTwoFactorCode(context context.Context, userID string) error

	/*
		SetTwoFactorEnabled toggles the two-factor requirement flag.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - enabled: bool

		Returns:
		  - error: Persistence failures
	*/
	SetTwoFactorEnabled(context context.Context, userID string, enabled bool) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		SetResetToken stores a password-reset token and its expiry.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetResetToken(context context.Context, userID, token string, expiresAt time.Time) error

	/*
		ClearResetToken consumes the reset token after a successful reset.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearResetToken(context context.Context, userID string) error

	/*
		UpdateProfile persists the whitelisted mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, user *User) error

	/*
		FindRoleByName resolves a role by its unique name.

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - *RoleRef: Minimal role projection
		  - error: apperr.NotFound or retrieval failures
	*/
	FindRoleByName(context context.Context, name string) (*RoleRef, error)

	/*
		FindRoleByID resolves a role by its primary key.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *RoleRef: Minimal role projection
		  - error: apperr.NotFound or retrieval failures
	*/
	FindRoleByID(context context.Context, id string) (*RoleRef, error)
}

// # Volatile Data Access

// CooldownRepository throttles outbound verification and two-factor codes.
//
// Implementations must be atomic: concurrent Reserve calls for the same email
// grant the window to exactly one caller.
type CooldownRepository interface {

	/*
		Reserve attempts to claim the cooldown window for an email address.

		Parameters:
		  - context: context.Context
		  - email: string
		  - window: time.Duration

		Returns:
		  - time.Duration: Zero if the window was claimed; otherwise the
		    remaining wait before the next attempt is allowed
		  - error: Connectivity failures
	*/
	Reserve(context context.Context, email string, window time.Duration) (time.Duration, error)
}
