// Copyright (c) 2026 Centinela. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/centinela/iam/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Uniqueness races
//
// Unique violations (SQLSTATE 23505) map to Conflict. This is what closes the
// concurrent-registration race: the application-level pre-check is advisory,
// the unique index is the authority.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream; pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(resource + " already exists")
		case pgerrcode.ForeignKeyViolation:
			return apperr.Conflict(resource + " is referenced by other records")
		}
	}

	return apperr.Internal(err)
}
