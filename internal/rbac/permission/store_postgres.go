// Copyright (c) 2026 Centinela. All rights reserved.

package permission

import (
	"context"
	"fmt"
	"time"

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

const permissionColumns = "id, url, method, module, description, access_ids, created_at, updated_at"

/*
Create persists a new permission record.

Parameters:
  - context: context.Context
  - permission: *Permission

Returns:
  - error: Conflict on duplicate matrix coordinates, persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, permission *Permission) error {
	const query = `
		INSERT INTO iam.permissions (id, url, method, module, description, access_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	permission.CreatedAt = now
	permission.UpdatedAt = now
	if permission.AccessIDs == nil {
		permission.AccessIDs = []string{}
	}

	_, err := repository.pool.Exec(context, query,
		permission.ID,
		permission.URL,
		permission.Method,
		permission.Module,
		permission.Description,
		permission.AccessIDs,
		permission.CreatedAt,
		permission.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Permission")
	}
	return nil
}

/*
FindByID retrieves a permission by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Permission: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Permission, error) {
	query := fmt.Sprintf("SELECT %s FROM iam.permissions WHERE id = $1", permissionColumns)

	permission := &Permission{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&permission.ID,
		&permission.URL,
		&permission.Method,
		&permission.Module,
		&permission.Description,
		&permission.AccessIDs,
		&permission.CreatedAt,
		&permission.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return permission, nil
}

/*
List returns a filtered page of permissions plus the total matching count.

Description: Module and method filters are exact-match and combine with AND.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Permission: Page of permissions
  - int: Total matching count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Permission, int, error) {
	// Empty filter values disable their clause.
	const where = `
		WHERE ($1 = '' OR module = $1)
		  AND ($2 = '' OR method = $2)`

	var total int
	countQuery := "SELECT COUNT(*) FROM iam.permissions " + where
	if err := repository.pool.QueryRow(context, countQuery, filter.Module, filter.Method).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Permission")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM iam.permissions %s ORDER BY module, url, method LIMIT $3 OFFSET $4",
		permissionColumns, where,
	)
	rows, err := repository.pool.Query(context, query, filter.Module, filter.Method, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Permission")
	}
	defer rows.Close()

	permissions := []*Permission{}
	for rows.Next() {
		permission := &Permission{}
		err := rows.Scan(
			&permission.ID,
			&permission.URL,
			&permission.Method,
			&permission.Module,
			&permission.Description,
			&permission.AccessIDs,
			&permission.CreatedAt,
			&permission.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Permission")
		}
		permissions = append(permissions, permission)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Permission")
	}

	return permissions, total, nil
}

/*
Update persists changes to the permission's mutable fields.

Description: The access back-reference array is NOT touched here; only the
access workflows may move it.

Parameters:
  - context: context.Context
  - permission: *Permission

Returns:
  - error: Conflict, apperr.NotFound, or failures
*/
func (repository *PostgresRepository) Update(context context.Context, permission *Permission) error {
	const query = `
		UPDATE iam.permissions
		SET url = $2, method = $3, module = $4, description = $5, updated_at = $6
		WHERE id = $1`

	permission.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		permission.ID,
		permission.URL,
		permission.Method,
		permission.Module,
		permission.Description,
		permission.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Permission")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Permission")
	}
	return nil
}

/*
Delete removes an unreferenced permission.

Description: The guarded DELETE only matches when the back-reference array is
empty, so a referenced permission survives untouched.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Conflict while referenced, apperr.NotFound, or failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `
		DELETE FROM iam.permissions
		WHERE id = $1 AND cardinality(access_ids) = 0`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Permission")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = repository.pool.QueryRow(context, "SELECT EXISTS (SELECT 1 FROM iam.permissions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return dberr.Wrap(err, "Permission")
	}
	if exists {
		return apperr.Conflict("Permission is still referenced by accesses")
	}
	return apperr.NotFound("Permission")
}
