// Copyright (c) 2026 Centinela. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/iam/internal/platform/dberr"
)

// # User Repository (PostgreSQL)

// userColumns is the canonical projection of the iam.users table, shared by
// every SELECT so row scanning stays in one place.
const userColumns = `
	id, name, last_name, gender, email, password_hash, verified,
	cell_phone, landline, id_type, id_number,
	verification_code, verification_code_expires,
	two_factor_code, two_factor_code_expires, requires_two_factor,
	reset_password_token, reset_password_expires,
	role_id, created_at, updated_at`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user and appends its ID to the owning role's user_ids.

Description: Executes both writes inside a single ACID transaction so an
account can never exist without its role membership back-reference, and a
membership entry can never point at a row that failed to insert.

Parameters:
  - context: context.Context
  - user: *User (RoleID must be resolved by the caller)

Returns:
  - error: Conflict on duplicate email (unique index), persistence failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_begin_failed: %w", err)
	}

	// Reclaims the transaction if any statement below fails or panics.
	defer transaction.Rollback(context)

	const insertQuery = `
		INSERT INTO iam.users (
			id, name, last_name, gender, email, password_hash, verified,
			cell_phone, landline, id_type, id_number,
			verification_code, verification_code_expires,
			two_factor_code, two_factor_code_expires, requires_two_factor,
			reset_password_token, reset_password_expires,
			role_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18,
			$19, $20, $21
		)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err = transaction.Exec(context, insertQuery,
		user.ID,
		user.Name,
		user.LastName,
		user.Gender,
		user.Email,
		user.PasswordHash,
		user.Verified,
		user.CellPhone,
		user.Landline,
		user.IDType,
		user.IDNumber,
		user.VerificationCode,
		user.VerificationCodeExpires,
		user.TwoFactorCode,
		user.TwoFactorCodeExpires,
		user.RequiresTwoFactor,
		user.ResetPasswordToken,
		user.ResetPasswordExpires,
		user.RoleID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// The unique index on email surfaces here as SQLSTATE 23505.
		return dberr.Wrap(err, "User")
	}

	// Membership back-reference on the role side.
	const appendQuery = `
		UPDATE iam.roles
		SET user_ids = array_append(user_ids, $2), updated_at = $3
		WHERE id = $1`

	tag, err := transaction.Exec(context, appendQuery, user.RoleID, user.ID, now)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}

/*
FindByID retrieves a user record by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM iam.users WHERE id = $1", userColumns)
	return repository.scanUser(context, query, id)
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM iam.users WHERE email = $1", userColumns)
	return repository.scanUser(context, query, email)
}

// scanUser executes a single-row user query and hydrates the entity.
func (repository *PostgresUserRepository) scanUser(context context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.LastName,
		&user.Gender,
		&user.Email,
		&user.PasswordHash,
		&user.Verified,
		&user.CellPhone,
		&user.Landline,
		&user.IDType,
		&user.IDNumber,
		&user.VerificationCode,
		&user.VerificationCodeExpires,
		&user.TwoFactorCode,
		&user.TwoFactorCodeExpires,
		&user.RequiresTwoFactor,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.RoleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
MarkVerified flips the account to verified and consumes the code.

Description: The expiry column is reset to the Unix epoch sentinel so a
replayed code can never validate against a stale window.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = `
		UPDATE iam.users
		SET verified = TRUE,
		    verification_code = '',
		    verification_code_expires = to_timestamp(0),
		    updated_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
SetVerificationCode stores a fresh registration code and expiry window.

Parameters:
  - context: context.Context
  - userID: string
  - code: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetVerificationCode(context context.Context, userID, code string, expiresAt time.Time) error {
	const query = `
		UPDATE iam.users
		SET verification_code = $2, verification_code_expires = $3, updated_at = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, code, expiresAt, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
SetTwoFactorCode stores a fresh login step-up code and expiry window.

Parameters:
  - context: context.Context
  - userID: string
  - code: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetTwoFactorCode(context context.Context, userID, code string, expiresAt time.Time) error {
	const query = `
		UPDATE iam.users
		SET two_factor_code = $2, two_factor_code_expires = $3, updated_at = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, code, expiresAt, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
ClearTwoFactorCode consumes the step-up code after successful validation.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearTwoFactorCode(context context.Context, userID string) error {
	const query = `
		UPDATE iam.users
		SET two_factor_code = '', two_factor_code_expires = to_timestamp(0), updated_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
SetTwoFactorEnabled toggles the two-factor requirement flag.

Description: Plain idempotent set; toggling to the current value is a no-op.

Parameters:
  - context: context.Context
  - userID: string
  - enabled: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetTwoFactorEnabled(context context.Context, userID string, enabled bool) error {
	const query = "UPDATE iam.users SET requires_two_factor = $2, updated_at = $3 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, userID, enabled, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
UpdatePassword replaces only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = "UPDATE iam.users SET password_hash = $2, updated_at = $3 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
SetResetToken stores a password-reset token with its expiry on the user row.

Parameters:
  - context: context.Context
  - userID: string
  - token: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, token string, expiresAt time.Time) error {
	const query = `
		UPDATE iam.users
		SET reset_password_token = $2, reset_password_expires = $3, updated_at = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, token, expiresAt, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
ClearResetToken consumes the reset token after a successful password reset.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearResetToken(context context.Context, userID string) error {
	const query = `
		UPDATE iam.users
		SET reset_password_token = '', reset_password_expires = to_timestamp(0), updated_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

/*
UpdateProfile persists the whitelisted mutable profile fields.

Description: Only the seven self-service profile columns are touched. Email,
password, verification state, and role are not reachable from this statement.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Update failures
*/
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, user *User) error {
	const query = `
		UPDATE iam.users
		SET name = $2, last_name = $3, gender = $4,
		    cell_phone = $5, landline = $6, id_type = $7, id_number = $8,
		    updated_at = $9
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.LastName,
		user.Gender,
		user.CellPhone,
		user.Landline,
		user.IDType,
		user.IDNumber,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	return nil
}

// # Role Directory

/*
FindRoleByName resolves a role by its unique name.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *RoleRef: Minimal role projection
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresUserRepository) FindRoleByName(context context.Context, name string) (*RoleRef, error) {
	const query = "SELECT id, name FROM iam.roles WHERE name = $1"

	role := &RoleRef{}
	if err := repository.pool.QueryRow(context, query, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	return role, nil
}

/*
FindRoleByID resolves a role by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *RoleRef: Minimal role projection
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresUserRepository) FindRoleByID(context context.Context, id string) (*RoleRef, error) {
	const query = "SELECT id, name FROM iam.roles WHERE id = $1"

	role := &RoleRef{}
	if err := repository.pool.QueryRow(context, query, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	return role, nil
}
