// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package auth implements the credential and verification lifecycle of a user
account.

It defines the core User entity and the state machine that carries an account
from registration through email verification, login, optional two-factor
step-up, and password recovery.

# Architecture

This layer is the "Truth" of the identity system. The entity defined here has
no external dependencies and encapsulates every business rule related to
account state: verification codes, two-factor codes, and reset tokens all
live on the user row so they are single-use and transactionally consistent.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered member of the Centinela platform.
//
// Verification, two-factor, and reset secrets are stored on the row itself.
// Each secret is cleared on successful consumption, which is what makes it
// single-use.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender,omitempty"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	Verified     bool   `json:"verified"`

	// Contact & identity document fields (profile whitelist).
	CellPhone string `json:"cell_phone,omitempty"`
	Landline  string `json:"landline,omitempty"`
	IDType    string `json:"id_type,omitempty"`
	IDNumber  string `json:"id_number,omitempty"`

	// Registration verification state.
	VerificationCode        string    `json:"-"`
	VerificationCodeExpires time.Time `json:"-"`

	// Two-factor login state.
	TwoFactorCode        string    `json:"-"`
	TwoFactorCodeExpires time.Time `json:"-"`
	RequiresTwoFactor    bool      `json:"requires_two_factor"`

	// Password recovery state.
	ResetPasswordToken   string    `json:"-"`
	ResetPasswordExpires time.Time `json:"-"`

	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleRef is the minimal role projection the authentication flow needs:
// resolving the default role at registration and stamping the role name
// into session token claims.
type RoleRef struct {
	ID   string
	Name string
}

// # Delivery Channels

// Channel identifies how a two-factor code is delivered to the account owner.
type Channel string

const (
	// ChannelEmail delivers codes to the account's email address.
	ChannelEmail Channel = "email"

	// ChannelSMS delivers codes to the account's cell phone.
	ChannelSMS Channel = "sms"
)

// IsValid reports whether the channel is a known delivery method.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldName        = "name"
	FieldLastName    = "last_name"
	FieldGender      = "gender"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldCode        = "code"
	FieldMethod      = "method"
	FieldCellPhone   = "cell_phone"
	FieldLandline    = "landline"
	FieldIDType      = "id_type"
	FieldIDNumber    = "id_number"
	FieldToken       = "token"
	FieldOldPassword = "old_password"
	FieldNewPassword = "new_password"
	FieldEnabled     = "enabled"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldExpiresAt   = "expires_at"
	FieldUser        = "user"
	FieldMessage     = "message"
)
