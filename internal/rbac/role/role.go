// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package role manages the closed set of roles in the access matrix.

A role is one side of every access grant. Besides its own metadata it carries
two maintained back-reference arrays: the users holding the role and the
access grants attached to it. Both arrays are updated in the same transaction
as the referencing mutation, never recomputed.
*/
package role

import "time"

// Role represents a grantable role in the access matrix.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Maintained back-references. Every ID in AccessIDs corresponds to an
	// access row whose role_id points back here, and vice versa.
	UserIDs   []string `json:"user_ids"`
	AccessIDs []string `json:"access_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldID          = "id"
)
