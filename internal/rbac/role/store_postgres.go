// Copyright (c) 2026 Centinela. All rights reserved.

package role

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

const roleColumns = "id, name, description, user_ids, access_ids, created_at, updated_at"

/*
Create persists a new role record.

Parameters:
  - context: context.Context
  - role: *Role

Returns:
  - error: Conflict on duplicate name (unique index), persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, role *Role) error {
	const query = `
		INSERT INTO iam.roles (id, name, description, user_ids, access_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now
	if role.UserIDs == nil {
		role.UserIDs = []string{}
	}
	if role.AccessIDs == nil {
		role.AccessIDs = []string{}
	}

	_, err := repository.pool.Exec(context, query,
		role.ID,
		role.Name,
		role.Description,
		role.UserIDs,
		role.AccessIDs,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	return nil
}

/*
FindByID retrieves a role by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Role: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Role, error) {
	query := fmt.Sprintf("SELECT %s FROM iam.roles WHERE id = $1", roleColumns)

	role := &Role{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.UserIDs,
		&role.AccessIDs,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	return role, nil
}

/*
List returns a page of roles ordered by name, plus the total count.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*Role: Page of roles
  - int: Total role count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Role, int, error) {
	var total int
	if err := repository.pool.QueryRow(context, "SELECT COUNT(*) FROM iam.roles").Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Role")
	}

	query := fmt.Sprintf("SELECT %s FROM iam.roles ORDER BY name LIMIT $1 OFFSET $2", roleColumns)
	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Role")
	}
	defer rows.Close()

	roles := []*Role{}
	for rows.Next() {
		role := &Role{}
		err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.UserIDs,
			&role.AccessIDs,
			&role.CreatedAt,
			&role.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Role")
	}

	return roles, total, nil
}

/*
Update persists changes to the role's mutable metadata.

Description: Back-reference arrays are NOT touched here; only the access
workflows may move them.

Parameters:
  - context: context.Context
  - role: *Role

Returns:
  - error: Conflict on duplicate name, apperr.NotFound, or failures
*/
func (repository *PostgresRepository) Update(context context.Context, role *Role) error {
	const query = `
		UPDATE iam.roles
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`

	role.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query, role.ID, role.Name, role.Description, role.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role")
	}
	return nil
}

/*
Delete removes an unreferenced role.

Description: The guarded DELETE only matches when both back-reference arrays
are empty, so a referenced role survives untouched. A follow-up existence
check tells a reference conflict apart from a plain miss.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Conflict while referenced, apperr.NotFound, or failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `
		DELETE FROM iam.roles
		WHERE id = $1
		  AND cardinality(user_ids) = 0
		  AND cardinality(access_ids) = 0`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing matched: either the role is referenced or it does not exist.
	var exists bool
	err = repository.pool.QueryRow(context, "SELECT EXISTS (SELECT 1 FROM iam.roles WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if exists {
		return apperr.Conflict("Role is still assigned to users or accesses")
	}
	return apperr.NotFound("Role")
}
