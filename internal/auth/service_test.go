// Copyright (c) 2026 Centinela. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/auth"
	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/sec"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository for service tests.
type fakeUserRepository struct {
	usersByID   map[string]*auth.User
	rolesByName map[string]*auth.RoleRef
	roleMembers map[string][]string
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		usersByID: map[string]*auth.User{},
		rolesByName: map[string]*auth.RoleRef{
			string(sec.RoleGuest): {ID: "role-guest", Name: string(sec.RoleGuest)},
		},
		roleMembers: map[string][]string{},
	}
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	for _, existing := range f.usersByID {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	f.usersByID[user.ID] = user
	f.roleMembers[user.RoleID] = append(f.roleMembers[user.RoleID], user.ID)
	return nil
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.usersByID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	user, ok := f.usersByID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Verified = true
	user.VerificationCode = ""
	user.VerificationCodeExpires = time.Unix(0, 0)
	return nil
}

func (f *fakeUserRepository) SetVerificationCode(_ context.Context, userID, code string, expiresAt time.Time) error {
	user := f.usersByID[userID]
	user.VerificationCode = code
	user.VerificationCodeExpires = expiresAt
	return nil
}

func (f *fakeUserRepository) SetTwoFactorCode(_ context.Context, userID, code string, expiresAt time.Time) error {
	user := f.usersByID[userID]
	user.TwoFactorCode = code
	user.TwoFactorCodeExpires = expiresAt
	return nil
}

func (f *fakeUserRepository) ClearTwoFactorCode(_ context.Context, userID string) error {
	user := f.usersByID[userID]
	user.TwoFactorCode = ""
	user.TwoFactorCodeExpires = time.Unix(0, 0)
	return nil
}

func (f *fakeUserRepository) SetTwoFactorEnabled(_ context.Context, userID string, enabled bool) error {
	f.usersByID[userID].RequiresTwoFactor = enabled
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	f.usersByID[userID].PasswordHash = newHash
	return nil
}

func (f *fakeUserRepository) SetResetToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	user := f.usersByID[userID]
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = expiresAt
	return nil
}

func (f *fakeUserRepository) ClearResetToken(_ context.Context, userID string) error {
	user := f.usersByID[userID]
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = time.Unix(0, 0)
	return nil
}

func (f *fakeUserRepository) UpdateProfile(_ context.Context, user *auth.User) error {
	f.usersByID[user.ID] = user
	return nil
}

func (f *fakeUserRepository) FindRoleByName(_ context.Context, name string) (*auth.RoleRef, error) {
	role, ok := f.rolesByName[name]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

func (f *fakeUserRepository) FindRoleByID(_ context.Context, id string) (*auth.RoleRef, error) {
	for _, role := range f.rolesByName {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, apperr.NotFound("Role")
}

// fakeCooldownRepository grants or denies the window deterministically.
type fakeCooldownRepository struct {
	remaining time.Duration
	reserved  []string
}

func (f *fakeCooldownRepository) Reserve(_ context.Context, email string, _ time.Duration) (time.Duration, error) {
	if f.remaining > 0 {
		return f.remaining, nil
	}
	f.reserved = append(f.reserved, email)
	return 0, nil
}

// fakeTokenProvider issues predictable tokens and remembers reset subjects.
type fakeTokenProvider struct {
	resetSubjects map[string]string
}

func newFakeTokenProvider() *fakeTokenProvider {
	return &fakeTokenProvider{resetSubjects: map[string]string{}}
}

func (f *fakeTokenProvider) GenerateAccessToken(userID, email, role string, _ time.Duration) (string, error) {
	return "access:" + userID + ":" + role, nil
}

func (f *fakeTokenProvider) GenerateResetToken(userID string, _ time.Duration) (string, error) {
	token := "reset:" + userID
	f.resetSubjects[token] = userID
	return token, nil
}

func (f *fakeTokenProvider) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	subject, ok := f.resetSubjects[tokenString]
	if !ok {
		return nil, errors.New("unknown token")
	}
	claims := &sec.AuthClaims{}
	claims.Subject = subject
	return claims, nil
}

// fakeGateway records outbound deliveries and can simulate provider outages.
type fakeGateway struct {
	emails []string // bodies, in order
	sms    []string
	fail   bool
}

func (f *fakeGateway) SendEmail(_ context.Context, _, _, plainText string) error {
	if f.fail {
		return errors.New("provider down")
	}
	f.emails = append(f.emails, plainText)
	return nil
}

func (f *fakeGateway) SendSMS(_ context.Context, _, body string) error {
	if f.fail {
		return errors.New("provider down")
	}
	f.sms = append(f.sms, body)
	return nil
}

// # Harness

type harness struct {
	repo     *fakeUserRepository
	cooldown *fakeCooldownRepository
	tokens   *fakeTokenProvider
	gateway  *fakeGateway
	service  *auth.Service
}

func newHarness() *harness {
	repo := newFakeUserRepository()
	cooldown := &fakeCooldownRepository{}
	tokens := newFakeTokenProvider()
	gateway := &fakeGateway{}
	service := auth.NewService(repo, cooldown, tokens, gateway, gateway, "https://app.centinela.app/reset")
	return &harness{repo: repo, cooldown: cooldown, tokens: tokens, gateway: gateway, service: service}
}

// register runs a happy-path registration and returns the stored user.
func (h *harness) register(t *testing.T, email string) *auth.User {
	t.Helper()
	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name:     "Ada",
		LastName: "Lovelace",
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

// verified registers and verifies an account in one step.
func (h *harness) verified(t *testing.T, email string) *auth.User {
	t.Helper()
	user := h.register(t, email)
	_, err := h.service.Verify(context.Background(), email, user.VerificationCode)
	require.NoError(t, err)
	return user
}

// # Registration

/*
TestService_Register covers enrollment: code issuance, role membership, and
the duplicate-email guard.
*/
func TestService_Register(t *testing.T) {
	t.Run("creates_unverified_guest_with_code", func(t *testing.T) {
		h := newHarness()

		user := h.register(t, "ada@example.com")

		assert.False(t, user.Verified)
		assert.Equal(t, "role-guest", user.RoleID)
		assert.Len(t, user.VerificationCode, 6)
		assert.True(t, user.VerificationCodeExpires.After(time.Now()))
		assert.NotEqual(t, "correct-horse", user.PasswordHash)

		// Membership back-reference recorded atomically with the insert.
		assert.Contains(t, h.repo.roleMembers["role-guest"], user.ID)

		// Verification email went out carrying the code.
		require.Len(t, h.gateway.emails, 1)
		assert.Contains(t, h.gateway.emails[0], user.VerificationCode)
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		h := newHarness()
		h.register(t, "ada@example.com")

		_, err := h.service.Register(context.Background(), auth.RegisterInput{
			Name: "Eve", LastName: "Clone", Email: "ada@example.com", Password: "hunter2hunter2",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})

	t.Run("missing_default_role_fails", func(t *testing.T) {
		h := newHarness()
		delete(h.repo.rolesByName, string(sec.RoleGuest))

		_, err := h.service.Register(context.Background(), auth.RegisterInput{
			Name: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "correct-horse",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})

	t.Run("delivery_failure_keeps_account", func(t *testing.T) {
		h := newHarness()
		h.gateway.fail = true

		_, err := h.service.Register(context.Background(), auth.RegisterInput{
			Name: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "correct-horse",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "DELIVERY_FAILED", ae.Code)

		// The account persisted despite the lost email.
		_, findErr := h.repo.FindByEmail(context.Background(), "ada@example.com")
		assert.NoError(t, findErr)
	})
}

// # Verification

/*
TestService_Verify covers code consumption: success, replay, expiry, and the
already-verified guard.
*/
func TestService_Verify(t *testing.T) {
	t.Run("valid_code_activates_and_logs_in", func(t *testing.T) {
		h := newHarness()
		user := h.register(t, "ada@example.com")
		code := user.VerificationCode

		session, err := h.service.Verify(context.Background(), "ada@example.com", code)

		require.NoError(t, err)
		assert.Equal(t, "access:"+user.ID+":Guest", session.AccessToken)
		assert.True(t, user.Verified)
		assert.Empty(t, user.VerificationCode, "code must be consumed")
	})

	t.Run("already_verified_conflicts", func(t *testing.T) {
		h := newHarness()
		user := h.register(t, "ada@example.com")
		code := user.VerificationCode
		_, err := h.service.Verify(context.Background(), "ada@example.com", code)
		require.NoError(t, err)

		_, err = h.service.Verify(context.Background(), "ada@example.com", code)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})

	t.Run("wrong_code_conflicts", func(t *testing.T) {
		h := newHarness()
		h.register(t, "ada@example.com")

		_, err := h.service.Verify(context.Background(), "ada@example.com", "000000")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
		assert.Equal(t, "Invalid or expired verification code", ae.Message)
	})

	t.Run("expired_code_conflicts", func(t *testing.T) {
		h := newHarness()
		user := h.register(t, "ada@example.com")
		user.VerificationCodeExpires = time.Now().Add(-time.Minute)

		_, err := h.service.Verify(context.Background(), "ada@example.com", user.VerificationCode)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})
}

/*
TestService_Resend covers the cooldown guard and code regeneration.
*/
func TestService_Resend(t *testing.T) {
	t.Run("replaces_code_and_delivers", func(t *testing.T) {
		h := newHarness()
		user := h.register(t, "ada@example.com")
		oldCode := user.VerificationCode

		err := h.service.Resend(context.Background(), "ada@example.com")

		require.NoError(t, err)
		assert.NotEqual(t, oldCode, user.VerificationCode)
		assert.Len(t, h.gateway.emails, 2)
	})

	t.Run("cooldown_rate_limits", func(t *testing.T) {
		h := newHarness()
		h.register(t, "ada@example.com")
		h.cooldown.remaining = 42 * time.Second

		err := h.service.Resend(context.Background(), "ada@example.com")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "RATE_LIMITED", ae.Code)
	})

	t.Run("verified_account_conflicts", func(t *testing.T) {
		h := newHarness()
		h.verified(t, "ada@example.com")

		err := h.service.Resend(context.Background(), "ada@example.com")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})
}

// # Login & Two-Factor

/*
TestService_Login covers credential checking, the enumeration-safe error
surface, and both two-factor channels.
*/
func TestService_Login(t *testing.T) {
	t.Run("unknown_email_and_bad_password_look_identical", func(t *testing.T) {
		h := newHarness()
		h.verified(t, "ada@example.com")

		_, unknownErr := h.service.Login(context.Background(), auth.LoginInput{
			Email: "nobody@example.com", Password: "whatever12345",
		})
		_, badPassErr := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "wrong-password",
		})

		require.Error(t, unknownErr)
		require.Error(t, badPassErr)
		assert.Equal(t, unknownErr.Error(), badPassErr.Error())
		assert.Equal(t, "Invalid credentials", badPassErr.Error())
	})

	t.Run("unverified_account_is_told_so", func(t *testing.T) {
		h := newHarness()
		h.register(t, "ada@example.com")

		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "Account not verified", ae.Message)
	})

	t.Run("unverified_with_wrong_password_stays_generic", func(t *testing.T) {
		h := newHarness()
		h.register(t, "ada@example.com")

		// Verification state must not leak to a caller who does not hold
		// the password.
		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "wrong-password",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "Invalid credentials", ae.Message)
	})

	t.Run("no_two_factor_issues_session_directly", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")

		outcome, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse",
		})

		require.NoError(t, err)
		require.NotNil(t, outcome.Session)
		assert.Nil(t, outcome.Challenge)
		assert.Equal(t, "access:"+user.ID+":Guest", outcome.Session.AccessToken)
	})

	t.Run("email_challenge_persists_code_not_response", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")
		require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))

		outcome, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse",
		})

		require.NoError(t, err)
		require.NotNil(t, outcome.Challenge)
		assert.Nil(t, outcome.Session)
		assert.Equal(t, auth.ChannelEmail, outcome.Challenge.Method)
		assert.Len(t, user.TwoFactorCode, 6)
		assert.True(t, outcome.Challenge.ExpiresAt.After(time.Now()))
	})

	t.Run("sms_without_phone_conflicts_without_persisting", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")
		require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))

		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse", Method: auth.ChannelSMS,
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "No phone number registered", ae.Message)
		assert.Empty(t, user.TwoFactorCode, "no code may be armed for an undeliverable challenge")
		assert.Empty(t, h.gateway.sms)
	})

	t.Run("sms_with_phone_delivers_over_sms", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")
		user.CellPhone = "+5731012345678"
		require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))

		outcome, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse", Method: auth.ChannelSMS,
		})

		require.NoError(t, err)
		assert.Equal(t, auth.ChannelSMS, outcome.Challenge.Method)
		require.Len(t, h.gateway.sms, 1)
		assert.Contains(t, h.gateway.sms[0], user.TwoFactorCode)
	})
}

/*
TestService_TwoFactor covers step-up completion and single-use consumption.
*/
func TestService_TwoFactor(t *testing.T) {
	arm := func(t *testing.T, h *harness) *auth.User {
		t.Helper()
		user := h.verified(t, "ada@example.com")
		require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))
		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "ada@example.com", Password: "correct-horse",
		})
		require.NoError(t, err)
		return user
	}

	t.Run("valid_code_issues_session_once", func(t *testing.T) {
		h := newHarness()
		user := arm(t, h)
		code := user.TwoFactorCode

		session, err := h.service.TwoFactor(context.Background(), "ada@example.com", code)
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.Empty(t, user.TwoFactorCode, "code must be consumed")

		// Replay with the consumed code fails.
		_, err = h.service.TwoFactor(context.Background(), "ada@example.com", code)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "Invalid or expired 2FA code", ae.Message)
	})

	t.Run("expired_code_conflicts", func(t *testing.T) {
		h := newHarness()
		user := arm(t, h)
		user.TwoFactorCodeExpires = time.Now().Add(-time.Second)

		_, err := h.service.TwoFactor(context.Background(), "ada@example.com", user.TwoFactorCode)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})
}

/*
TestService_ToggleTwoFactor checks idempotency of the requirement flag.
*/
func TestService_ToggleTwoFactor(t *testing.T) {
	h := newHarness()
	user := h.verified(t, "ada@example.com")

	require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))
	assert.True(t, user.RequiresTwoFactor)

	// Enabling twice is a no-op, not an error.
	require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", true))
	assert.True(t, user.RequiresTwoFactor)

	require.NoError(t, h.service.ToggleTwoFactor(context.Background(), "ada@example.com", false))
	assert.False(t, user.RequiresTwoFactor)
}

// # Password Lifecycle

/*
TestService_ChangePassword verifies the current-password gate.
*/
func TestService_ChangePassword(t *testing.T) {
	h := newHarness()
	user := h.verified(t, "ada@example.com")
	originalHash := user.PasswordHash

	err := h.service.ChangePassword(context.Background(), user.ID, "wrong-password", "new-password-123")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Current password is incorrect", ae.Message)
	assert.Equal(t, originalHash, user.PasswordHash)

	err = h.service.ChangePassword(context.Background(), user.ID, "correct-horse", "new-password-123")
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, user.PasswordHash)
}

/*
TestService_PasswordReset covers the forgot/reset pair and single-use tokens.
*/
func TestService_PasswordReset(t *testing.T) {
	t.Run("full_recovery_flow", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")
		originalHash := user.PasswordHash

		require.NoError(t, h.service.ForgotPassword(context.Background(), "ada@example.com"))
		require.NotEmpty(t, user.ResetPasswordToken)
		token := user.ResetPasswordToken

		// The emailed link carries the token.
		assert.Contains(t, h.gateway.emails[len(h.gateway.emails)-1], token)

		require.NoError(t, h.service.ResetPassword(context.Background(), token, "brand-new-password"))
		assert.NotEqual(t, originalHash, user.PasswordHash)
		assert.Empty(t, user.ResetPasswordToken, "token must be consumed")

		// The consumed token never works again.
		err := h.service.ResetPassword(context.Background(), token, "another-password-1")
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})

	t.Run("expired_token_rejected", func(t *testing.T) {
		h := newHarness()
		user := h.verified(t, "ada@example.com")
		require.NoError(t, h.service.ForgotPassword(context.Background(), "ada@example.com"))
		user.ResetPasswordExpires = time.Now().Add(-time.Minute)

		err := h.service.ResetPassword(context.Background(), user.ResetPasswordToken, "brand-new-password")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})

	t.Run("garbage_token_rejected", func(t *testing.T) {
		h := newHarness()

		err := h.service.ResetPassword(context.Background(), "not-a-token", "brand-new-password")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})
}

// # Profile

/*
TestService_UpdateProfile verifies the whitelist merge: provided fields
change, absent fields survive.
*/
func TestService_UpdateProfile(t *testing.T) {
	h := newHarness()
	user := h.verified(t, "ada@example.com")
	user.CellPhone = "+5731012345678"

	newName := "Augusta"
	newIDNumber := "CC-1024"
	updated, err := h.service.UpdateProfile(context.Background(), user.ID, auth.ProfileInput{
		Name:     &newName,
		IDNumber: &newIDNumber,
	})

	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.Name)
	assert.Equal(t, "CC-1024", updated.IDNumber)

	// Untouched whitelist fields keep their values.
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "+5731012345678", updated.CellPhone)
}
