// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package auth implements the core identity engine of the Centinela platform.

It handles registration with email verification, password login with an
optional email/SMS second factor, and the full password lifecycle (change,
forgot, reset).

Architecture:

  - Service: Orchestrates business logic (Register, Login, two-factor).
  - Repository: Abstracted interfaces for Postgres (users/roles) and Redis
    (issuance cooldowns).
  - Gateway: Outbound email/SMS delivery through narrow Mailer/Texter
    contracts, always after the surrounding write has committed.

Verification codes, two-factor codes, and reset tokens are persisted on the
user row and cleared on consumption, making every secret single-use.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/constants"
	"github.com/centinela/iam/internal/platform/sec"
	"github.com/centinela/iam/pkg/pointer"
	"github.com/centinela/iam/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and checking security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The account's email address.
	//   - role: The name of the account's role.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)

	// GenerateResetToken creates a signed, time-boxed password-reset token.
	GenerateResetToken(userID string, timeToLive time.Duration) (string, error)

	// VerifyToken checks the signature and validity of a JWT string.
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Mailer delivers plain-text email through the notification gateway.
type Mailer interface {
	SendEmail(context context.Context, address, subject, plainText string) error
}

// Texter delivers text messages through the notification gateway.
type Texter interface {
	SendSMS(context context.Context, to, body string) error
}

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, verification,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository     UserRepository
	cooldownRepository CooldownRepository
	tokenProvider      TokenProvider
	mailer             Mailer
	texter             Texter

	// passwordResetURL is the frontend URL embedded in recovery emails.
	passwordResetURL string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	cooldownRepo CooldownRepository,
	tokenProv TokenProvider,
	mailer Mailer,
	texter Texter,
	passwordResetURL string,
) *Service {
	return &Service{
		userRepository:     userRepo,
		cooldownRepository: cooldownRepo,
		tokenProvider:      tokenProv,
		mailer:             mailer,
		texter:             texter,
		passwordResetURL:   passwordResetURL,
	}
}

// Session represents a successfully authenticated login.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *User
}

// Challenge describes a pending second authentication factor.
//
// The code itself is never part of the challenge: it travels only through the
// delivery channel.
type Challenge struct {
	Method    Channel
	ExpiresAt time.Time
}

// LoginOutcome is the result of a credential check: either a completed
// session or a pending two-factor challenge, never both.
type LoginOutcome struct {
	Session   *Session
	Challenge *Challenge
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Name      string
	LastName  string
	Gender    string
	Email     string
	Password  string
	CellPhone string
	Landline  string
	IDType    string
	IDNumber  string
}

/*
Register validates, hashes, and persists a brand-new user account.

Description: Resolves the default Guest role, hashes the password, generates
the verification code, and persists the account plus its role membership in
one transaction. The verification email goes out only after the commit.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (email taken), NotFound (default role missing),
    DeliveryFailed (account persisted, email lost), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Every self-registered account starts as a Guest. A missing Guest role
	// means the system was never seeded and registration cannot proceed.
	guestRole, err := service.userRepository.FindRoleByName(context, string(sec.RoleGuest))
	if err != nil {
		return nil, err
	}

	// Prevent storing plain-text passwords. Default cost balances security
	// against CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	code, err := sec.GenerateNumericCode(constants.CodeDigits)
	if err != nil {
		return nil, fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	now := time.Now()
	epoch := time.Unix(0, 0)

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:                      uuid.New(),
		Name:                    input.Name,
		LastName:                input.LastName,
		Gender:                  input.Gender,
		Email:                   input.Email,
		PasswordHash:            hashedPassword,
		Verified:                false,
		CellPhone:               input.CellPhone,
		Landline:                input.Landline,
		IDType:                  input.IDType,
		IDNumber:                input.IDNumber,
		VerificationCode:        code,
		VerificationCodeExpires: now.Add(constants.VerificationCodeTTL),
		TwoFactorCodeExpires:    epoch,
		RequiresTwoFactor:       false,
		ResetPasswordExpires:    epoch,
		RoleID:                  guestRole.ID,
	}

	// Single transaction: user row + role membership back-reference. The
	// unique email index is the authority on duplicates, not the pre-check.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Post-commit side effect. The account stays; only the delivery failed.
	if err := service.sendVerificationEmail(context, user.Email, code); err != nil {
		return nil, apperr.DeliveryFailed("Account created but the verification email could not be sent", err)
	}

	return user, nil
}

/*
Verify confirms ownership of an email address using the registration code.

Description: Validates the single-use code against the stored copy and its
expiry window, flips the account to verified, and issues a session token.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *Session: Signed session token and the verified user
  - err: NotFound, Conflict (already verified / bad code), or storage errors
*/
func (service *Service) Verify(context context.Context, email, code string) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}

	if user.Verified {
		return nil, apperr.Conflict("Account is already verified")
	}

	// Constant comparison point: stored code must match AND still be inside
	// its window. An empty stored code can never match a 6-digit input.
	if user.VerificationCode == "" || user.VerificationCode != code || time.Now().After(user.VerificationCodeExpires) {
		return nil, apperr.Conflict("Invalid or expired verification code")
	}

	// Consumes the code: cleared value + epoch expiry sentinel.
	if err := service.userRepository.MarkVerified(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_mark_verified_failed: %w", err)
	}
	user.Verified = true
	user.VerificationCode = ""

	return service.issueSession(context, user)
}

/*
Resend regenerates and re-delivers the registration verification code.

Description: Guarded by a per-email cooldown window so a client cannot flood
the delivery provider. A fresh code replaces the previous one.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: NotFound, Conflict (already verified), RateLimited (cooldown),
    DeliveryFailed, or storage errors
*/
func (service *Service) Resend(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return err
	}

	if user.Verified {
		return apperr.Conflict("Account is already verified")
	}

	remaining, err := service.cooldownRepository.Reserve(context, user.Email, constants.ResendCooldown)
	if err != nil {
		return fmt.Errorf("auth_service_cooldown_failed: %w", err)
	}
	if remaining > 0 {
		return apperr.RateLimited(int(remaining.Seconds()))
	}

	code, err := sec.GenerateNumericCode(constants.CodeDigits)
	if err != nil {
		return fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	if err := service.userRepository.SetVerificationCode(context, user.ID, code, time.Now().Add(constants.VerificationCodeTTL)); err != nil {
		return fmt.Errorf("auth_service_resend_store_failed: %w", err)
	}

	if err := service.sendVerificationEmail(context, user.Email, code); err != nil {
		return apperr.DeliveryFailed("Verification email could not be sent", err)
	}

	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string

	// Method selects the second-factor delivery channel when the account
	// requires one. Empty defaults to email.
	Method Channel
}

/*
Login validates user credentials and either issues a session or arms a
two-factor challenge.

Description: Unknown emails and wrong passwords yield the same generic
message to prevent account enumeration. Unverified accounts are told so
explicitly: at that stage the email's existence was already disclosed during
registration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginOutcome: Completed session, or a pending challenge
  - err: Unauthorized, Conflict (SMS without phone), RateLimited,
    DeliveryFailed, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginOutcome, error) {
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Constant-time comparison in bcrypt prevents timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Password before verification state: the stage-specific message below
	// is only disclosed to a caller who already holds the password.
	if !user.Verified {
		return nil, apperr.Unauthorized("Account not verified")
	}

	if !user.RequiresTwoFactor {
		session, err := service.issueSession(context, user)
		if err != nil {
			return nil, err
		}
		return &LoginOutcome{Session: session}, nil
	}

	return service.armTwoFactor(context, user, input.Method)
}

// armTwoFactor generates, persists, and delivers a login step-up code.
func (service *Service) armTwoFactor(context context.Context, user *User, method Channel) (*LoginOutcome, error) {
	if method == "" {
		method = ChannelEmail
	}

	// Channel preconditions come first: nothing is persisted or delivered
	// for an undeliverable challenge.
	if method == ChannelSMS && user.CellPhone == "" {
		return nil, apperr.Conflict("No phone number registered")
	}

	remaining, err := service.cooldownRepository.Reserve(context, user.Email, constants.ResendCooldown)
	if err != nil {
		return nil, fmt.Errorf("auth_service_cooldown_failed: %w", err)
	}
	if remaining > 0 {
		return nil, apperr.RateLimited(int(remaining.Seconds()))
	}

	code, err := sec.GenerateNumericCode(constants.CodeDigits)
	if err != nil {
		return nil, fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.TwoFactorCodeTTL)
	if err := service.userRepository.SetTwoFactorCode(context, user.ID, code, expiresAt); err != nil {
		return nil, fmt.Errorf("auth_service_two_factor_store_failed: %w", err)
	}

	switch method {
	case ChannelSMS:
		err = service.texter.SendSMS(context, user.CellPhone,
			fmt.Sprintf("Your Centinela login code is %s. It expires in %d minutes.", code, int(constants.TwoFactorCodeTTL.Minutes())))
	default:
		err = service.mailer.SendEmail(context, user.Email,
			"Your Centinela login code",
			fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(constants.TwoFactorCodeTTL.Minutes())))
	}
	if err != nil {
		return nil, apperr.DeliveryFailed("Two-factor code could not be delivered", err)
	}

	return &LoginOutcome{Challenge: &Challenge{Method: method, ExpiresAt: expiresAt}}, nil
}

/*
TwoFactor completes a pending two-factor login.

Description: Validates the single-use step-up code against the stored copy
and its window, consumes it, and issues the session token.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *Session: Signed session token
  - err: NotFound, Conflict (bad code), or internal failures
*/
func (service *Service) TwoFactor(context context.Context, email, code string) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}

	if user.TwoFactorCode == "" || user.TwoFactorCode != code || time.Now().After(user.TwoFactorCodeExpires) {
		return nil, apperr.Conflict("Invalid or expired 2FA code")
	}

	// Single-use: consume before issuing the session.
	if err := service.userRepository.ClearTwoFactorCode(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_two_factor_clear_failed: %w", err)
	}

	return service.issueSession(context, user)
}

/*
ToggleTwoFactor sets the two-factor requirement for an account.

Description: Idempotent by design: enabling an already-enabled account (or
disabling an already-disabled one) succeeds without side effects.

Parameters:
  - context: context.Context
  - email: string
  - enabled: bool

Returns:
  - err: NotFound or persistence failures
*/
func (service *Service) ToggleTwoFactor(context context.Context, email string, enabled bool) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return err
	}

	if err := service.userRepository.SetTwoFactorEnabled(context, user.ID, enabled); err != nil {
		return fmt.Errorf("auth_service_toggle_two_factor_failed: %w", err)
	}

	return nil
}

// # Password Lifecycle

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before rehashing and storing the
replacement.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized (wrong current password) or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

/*
ForgotPassword initiates the password recovery flow.

Description: Generates a signed one-hour reset token, persists it on the user
row (which makes it single-use), and emails the recovery link.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: NotFound, DeliveryFailed, or internal failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return err
	}

	token, err := service.tokenProvider.GenerateResetToken(user.ID, constants.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_generation_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.ResetTokenTTL)
	if err := service.userRepository.SetResetToken(context, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("auth_service_reset_token_store_failed: %w", err)
	}

	link := service.passwordResetURL + "?token=" + token
	err = service.mailer.SendEmail(context, user.Email,
		"Reset your Centinela password",
		fmt.Sprintf("Follow this link to reset your password: %s\nThe link expires in %d minutes.", link, int(constants.ResetTokenTTL.Minutes())))
	if err != nil {
		return apperr.DeliveryFailed("Password reset email could not be sent", err)
	}

	return nil
}

/*
ResetPassword completes the password recovery flow.

Description: The presented token must carry a valid signature AND be
byte-equal to the persisted, non-expired copy. The stored copy is cleared on
success, so a reset link works exactly once.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Unauthorized (invalid/expired/consumed token) or storage failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Signature check recovers the subject without a table scan.
	claims, err := service.tokenProvider.VerifyToken(token)
	if err != nil {
		return apperr.Unauthorized("Invalid or expired reset token")
	}

	user, err := service.userRepository.FindByID(context, claims.Subject)
	if err != nil {
		return apperr.Unauthorized("Invalid or expired reset token")
	}

	// The stored copy is the single-use authority: a consumed or replaced
	// token never matches even while its signature is still valid.
	if user.ResetPasswordToken == "" || user.ResetPasswordToken != token || time.Now().After(user.ResetPasswordExpires) {
		return apperr.Unauthorized("Invalid or expired reset token")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	if err := service.userRepository.ClearResetToken(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_reset_token_clear_failed: %w", err)
	}

	return nil
}

// # Profile

// ProfileInput carries the whitelisted, partially-updatable profile fields.
// Nil pointers mean "leave unchanged"; anything outside this struct simply
// has no way to reach the update.
type ProfileInput struct {
	Name      *string
	LastName  *string
	Gender    *string
	CellPhone *string
	Landline  *string
	IDType    *string
	IDNumber  *string
}

/*
GetProfile returns the authenticated user's own account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: NotFound or retrieval failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
UpdateProfile merges the provided whitelisted fields into the account.

Description: Whitelist merge only. Email, password, verification state, role,
and every secret column are structurally unreachable from this operation.

Parameters:
  - context: context.Context
  - userID: string
  - input: ProfileInput

Returns:
  - *User: Updated entity
  - err: NotFound or persistence failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input ProfileInput) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	user.Name = pointer.Fallback(input.Name, user.Name)
	user.LastName = pointer.Fallback(input.LastName, user.LastName)
	user.Gender = pointer.Fallback(input.Gender, user.Gender)
	user.CellPhone = pointer.Fallback(input.CellPhone, user.CellPhone)
	user.Landline = pointer.Fallback(input.Landline, user.Landline)
	user.IDType = pointer.Fallback(input.IDType, user.IDType)
	user.IDNumber = pointer.Fallback(input.IDNumber, user.IDNumber)

	if err := service.userRepository.UpdateProfile(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_update_profile_failed: %w", err)
	}

	return user, nil
}

// # Internal Helpers

// issueSession resolves the role name for the token claims and signs a
// session token for the user.
func (service *Service) issueSession(context context.Context, user *User) (*Session, error) {
	role, err := service.userRepository.FindRoleByID(context, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_role_resolution_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.SessionTokenTTL)
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, role.Name, constants.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// sendVerificationEmail delivers the registration code to the account email.
func (service *Service) sendVerificationEmail(context context.Context, email, code string) error {
	return service.mailer.SendEmail(context, email,
		"Verify your Centinela account",
		fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(constants.VerificationCodeTTL.Minutes())))
}
