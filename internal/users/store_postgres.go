// Copyright (c) 2026 Centinela. All rights reserved.

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/dberr"
)

// # User Repository (PostgreSQL)

// adminColumns is the admin projection of iam.users joined with iam.roles,
// shared by every SELECT so row scanning stays in one place.
const adminColumns = `
	u.id, u.name, u.last_name, u.gender, u.email, u.verified,
	u.cell_phone, u.landline, u.id_type, u.id_number,
	u.requires_two_factor,
	r.id, r.name,
	u.created_at, u.updated_at`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanUser hydrates one admin projection row.
func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.LastName,
		&user.Gender,
		&user.Email,
		&user.Verified,
		&user.CellPhone,
		&user.Landline,
		&user.IDType,
		&user.IDNumber,
		&user.RequiresTwoFactor,
		&user.Role.ID,
		&user.Role.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return &user, nil
}

/*
Create persists a new user and appends its ID to the owning role's user_ids.

Description: Both writes run inside a single ACID transaction so an account
can never exist without its role membership back-reference.

Parameters:
  - context: context.Context
  - user: *User (Role.ID must be resolved by the caller)

Returns:
  - error: Conflict on duplicate email, NotFound when the role row is gone,
    persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_users_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// The verification pair is pending like any self-registration; the
	// remaining secret columns start cleared with the epoch sentinel.
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
			'', to_timestamp(0), $14,
			'', to_timestamp(0),
			$15, $16, $17
		)`

	now := time.Now()
	user.CreatedAt = now
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
		user.RequiresTwoFactor,
		user.Role.ID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	const appendQuery = `
		UPDATE iam.roles
		SET user_ids = array_append(user_ids, $2), updated_at = $3
		WHERE id = $1`

	tag, err := transaction.Exec(context, appendQuery, user.Role.ID, user.ID, now)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role")
	}

	return transaction.Commit(context)
}

/*
FindByID retrieves a user by its identifier.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity with role reference
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM iam.users u
		JOIN iam.roles r ON r.id = u.role_id
		WHERE u.id = $1`

	return scanUser(repository.pool.QueryRow(context, query, id))
}

/*
List retrieves a page of users ordered by creation time.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*User: Page of users
  - int: Total count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*User, int, error) {
	query := `
		SELECT ` + adminColumns + `, COUNT(*) OVER() AS total
		FROM iam.users u
		JOIN iam.roles r ON r.id = u.role_id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}
	defer rows.Close()

	users := []*User{}
	total := 0

	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.LastName,
			&user.Gender,
			&user.Email,
			&user.Verified,
			&user.CellPhone,
			&user.Landline,
			&user.IDType,
			&user.IDNumber,
			&user.RequiresTwoFactor,
			&user.Role.ID,
			&user.Role.Name,
			&user.CreatedAt,
			&user.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "User")
		}
		users = append(users, &user)
	}
	if rows.Err() != nil {
		return nil, 0, dberr.Wrap(rows.Err(), "User")
	}

	return users, total, nil
}

/*
UpdateProfile persists the editable profile columns of a user.

Description: Only the admin-editable whitelist is touched. Secrets, the
verified flag and role membership are out of reach of this statement.

Parameters:
  - context: context.Context
  - user: *User (merged state)

Returns:
  - error: apperr.NotFound, Conflict on duplicate email, persistence failures
*/
func (repository *PostgresRepository) UpdateProfile(context context.Context, user *User) error {
	const query = `
		UPDATE iam.users
		SET name = $2, last_name = $3, gender = $4, email = $5,
		    cell_phone = $6, landline = $7, id_type = $8, id_number = $9,
		    updated_at = $10
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.LastName,
		user.Gender,
		user.Email,
		user.CellPhone,
		user.Landline,
		user.IDType,
		user.IDNumber,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
ChangeRole moves a user between roles.

Description: The user row and both user_ids arrays change inside one
transaction; a vanished target role aborts everything.

Parameters:
  - context: context.Context
  - userID, oldRoleID, newRoleID: string

Returns:
  - error: apperr.NotFound (user or new role), persistence failures
*/
func (repository *PostgresRepository) ChangeRole(context context.Context, userID, oldRoleID, newRoleID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_users_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	now := time.Now()

	const userQuery = `
		UPDATE iam.users SET role_id = $2, updated_at = $3 WHERE id = $1`

	tag, err := transaction.Exec(context, userQuery, userID, newRoleID, now)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	const removeQuery = `
		UPDATE iam.roles
		SET user_ids = array_remove(user_ids, $2), updated_at = $3
		WHERE id = $1`

	if _, err := transaction.Exec(context, removeQuery, oldRoleID, userID, now); err != nil {
		return dberr.Wrap(err, "Role")
	}

	const appendQuery = `
		UPDATE iam.roles
		SET user_ids = array_append(user_ids, $2), updated_at = $3
		WHERE id = $1`

	tag, err = transaction.Exec(context, appendQuery, newRoleID, userID, now)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role")
	}

	return transaction.Commit(context)
}

/*
Delete removes a user and detaches it from its role.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_users_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const deleteQuery = `
		DELETE FROM iam.users WHERE id = $1 RETURNING role_id`

	var roleID string
	if err := transaction.QueryRow(context, deleteQuery, id).Scan(&roleID); err != nil {
		return dberr.Wrap(err, "User")
	}

	const detachQuery = `
		UPDATE iam.roles
		SET user_ids = array_remove(user_ids, $2), updated_at = $3
		WHERE id = $1`

	if _, err := transaction.Exec(context, detachQuery, roleID, id, time.Now()); err != nil {
		return dberr.Wrap(err, "Role")
	}

	return transaction.Commit(context)
}

/*
FindRoleByName resolves a role name to its reference.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *RoleRef: Role identifier and name
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindRoleByName(context context.Context, name string) (*RoleRef, error) {
	const query = `SELECT id, name FROM iam.roles WHERE name = $1`

	var role RoleRef
	if err := repository.pool.QueryRow(context, query, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	return &role, nil
}
