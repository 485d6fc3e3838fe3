// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package users implements administrative account management.

Unlike the self-service flows in the auth package, every operation here acts
on somebody else's account and is gated by the role hierarchy: Administrator
manages everyone, Manager manages everyone except Administrators, and no
other role reaches this surface at all.
*/
package users

import "time"

// User is the administrative view of an account.
//
// Secret columns stay out of the JSON projection. The verification fields
// are carried internally because admin-created accounts go through the same
// email verification flow as self-registered ones; the remaining secrets
// (2FA codes, reset tokens) belong to the self-service auth flows and are
// never touched through the admin surface.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Gender   string `json:"gender"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`

	CellPhone string `json:"cell_phone"`
	Landline  string `json:"landline"`
	IDType    string `json:"id_type"`
	IDNumber  string `json:"id_number"`

	RequiresTwoFactor bool `json:"requires_two_factor"`

	// PasswordHash and the verification pair are only carried between
	// service and store on creation.
	PasswordHash            string    `json:"-"`
	VerificationCode        string    `json:"-"`
	VerificationCodeExpires time.Time `json:"-"`

	Role RoleRef `json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleRef is the role projection embedded in admin user views.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validation field names.
const (
	FieldName     = "name"
	FieldLastName = "last_name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)
