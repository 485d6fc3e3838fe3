// Copyright (c) 2026 Centinela. All rights reserved.

package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accessColumns = "id, role_id, permission_id, created_at, updated_at"

/*
Create persists a new grant and attaches its ID to both endpoint arrays.

Description: The endpoint attaches run first; an UPDATE that matches no row
proves the endpoint is missing and aborts the whole transaction, so a grant
can never be half-registered.

Parameters:
  - context: context.Context
  - access: *Access

Returns:
  - error: apperr.NotFound (endpoint missing), Conflict (duplicate pair),
    or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, access *Access) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_access_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	now := time.Now()
	access.CreatedAt = now
	access.UpdatedAt = now

	if err := repository.applyChanges(context, transaction, access.ID, planAttach(access), now); err != nil {
		return err
	}

	const insertQuery = `
		INSERT INTO iam.accesses (id, role_id, permission_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = transaction.Exec(context, insertQuery,
		access.ID,
		access.RoleID,
		access.PermissionID,
		access.CreatedAt,
		access.UpdatedAt,
	)
	if err != nil {
		// The unique (role_id, permission_id) index rejects duplicate grants.
		return dberr.Wrap(err, "Access")
	}

	return transaction.Commit(context)
}

/*
FindByID retrieves a grant by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Access: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Access, error) {
	query := fmt.Sprintf("SELECT %s FROM iam.accesses WHERE id = $1", accessColumns)

	access := &Access{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&access.ID,
		&access.RoleID,
		&access.PermissionID,
		&access.CreatedAt,
		&access.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Access")
	}
	return access, nil
}

/*
List returns a page of grants plus the total count.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*Access: Page of grants
  - int: Total grant count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Access, int, error) {
	var total int
	if err := repository.pool.QueryRow(context, "SELECT COUNT(*) FROM iam.accesses").Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Access")
	}

	query := fmt.Sprintf("SELECT %s FROM iam.accesses ORDER BY created_at LIMIT $1 OFFSET $2", accessColumns)
	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Access")
	}
	defer rows.Close()

	accesses := []*Access{}
	for rows.Next() {
		access := &Access{}
		err := rows.Scan(
			&access.ID,
			&access.RoleID,
			&access.PermissionID,
			&access.CreatedAt,
			&access.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Access")
		}
		accesses = append(accesses, access)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Access")
	}

	return accesses, total, nil
}

/*
Update re-points a grant and moves its ID between endpoint arrays.

Description: Locks the current row, computes which sides changed, detaches
from the old endpoints, attaches to the new ones, then rewrites the row. Any
missing new endpoint aborts the transaction with the old state intact.

Parameters:
  - context: context.Context
  - access: *Access (new coordinates)

Returns:
  - error: apperr.NotFound, Conflict, or persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, access *Access) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_access_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// Lock the grant so concurrent moves serialize on the row.
	const lockQuery = "SELECT role_id, permission_id FROM iam.accesses WHERE id = $1 FOR UPDATE"

	oldAccess := &Access{ID: access.ID}
	err = transaction.QueryRow(context, lockQuery, access.ID).Scan(&oldAccess.RoleID, &oldAccess.PermissionID)
	if err != nil {
		return dberr.Wrap(err, "Access")
	}

	now := time.Now()
	if err := repository.applyChanges(context, transaction, access.ID, planMove(oldAccess, access), now); err != nil {
		return err
	}

	const updateQuery = `
		UPDATE iam.accesses
		SET role_id = $2, permission_id = $3, updated_at = $4
		WHERE id = $1`

	access.UpdatedAt = now
	if _, err := transaction.Exec(context, updateQuery, access.ID, access.RoleID, access.PermissionID, access.UpdatedAt); err != nil {
		return dberr.Wrap(err, "Access")
	}

	return transaction.Commit(context)
}

/*
Delete removes a grant and detaches its ID from both endpoint arrays.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_access_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const lockQuery = "SELECT role_id, permission_id FROM iam.accesses WHERE id = $1 FOR UPDATE"

	access := &Access{ID: id}
	err = transaction.QueryRow(context, lockQuery, id).Scan(&access.RoleID, &access.PermissionID)
	if err != nil {
		return dberr.Wrap(err, "Access")
	}

	if err := repository.applyChanges(context, transaction, id, planDetach(access), time.Now()); err != nil {
		return err
	}

	if _, err := transaction.Exec(context, "DELETE FROM iam.accesses WHERE id = $1", id); err != nil {
		return dberr.Wrap(err, "Access")
	}

	return transaction.Commit(context)
}

// applyChanges executes a back-reference plan inside the transaction.
//
// An attach that matches no row means the endpoint does not exist; the error
// aborts the caller's transaction, which is what keeps the arrays and the
// grant rows mutually consistent.
func (repository *PostgresRepository) applyChanges(context context.Context, transaction pgx.Tx, accessID string, changes []refChange, now time.Time) error {
	for _, change := range changes {
		var query, resource string
		switch {
		case change.Side == sideRole && change.Attach:
			query = "UPDATE iam.roles SET access_ids = array_append(access_ids, $2), updated_at = $3 WHERE id = $1"
			resource = "Role"
		case change.Side == sideRole:
			query = "UPDATE iam.roles SET access_ids = array_remove(access_ids, $2), updated_at = $3 WHERE id = $1"
			resource = "Role"
		case change.Attach:
			query = "UPDATE iam.permissions SET access_ids = array_append(access_ids, $2), updated_at = $3 WHERE id = $1"
			resource = "Permission"
		default:
			query = "UPDATE iam.permissions SET access_ids = array_remove(access_ids, $2), updated_at = $3 WHERE id = $1"
			resource = "Permission"
		}

		tag, err := transaction.Exec(context, query, change.RowID, accessID, now)
		if err != nil {
			return dberr.Wrap(err, resource)
		}
		if change.Attach && tag.RowsAffected() == 0 {
			return apperr.NotFound(resource)
		}
	}
	return nil
}
