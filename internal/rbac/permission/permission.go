// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package permission manages the protected-endpoint catalog of the access
matrix.

A permission names one guarded endpoint shape: a normalized URL pattern, an
HTTP method, and the module the endpoint belongs to. The authorization guard
resolves incoming requests against this catalog by exact match, which is why
URLs are normalized at write time with the same rules the guard applies at
read time.
*/
package permission

import "time"

// Permission represents one guarded endpoint shape in the matrix.
type Permission struct {
	ID string `json:"id"`

	// URL is the normalized pattern, volatile segments collapsed to "?".
	URL         string `json:"url"`
	Method      string `json:"method"`
	Module      string `json:"module"`
	Description string `json:"description,omitempty"`

	// Maintained back-references to the access grants using this permission.
	AccessIDs []string `json:"access_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows permission listings.
type Filter struct {
	Module string
	Method string
}

// # Field Identifiers

const (
	FieldURL         = "url"
	FieldMethod      = "method"
	FieldModule      = "module"
	FieldDescription = "description"
)
