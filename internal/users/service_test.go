// Copyright (c) 2026 Centinela. All rights reserved.

package users_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/sec"
	"github.com/centinela/iam/internal/users"
)

// # Test Doubles

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	usersByID   map[string]*users.User
	rolesByName map[string]*users.RoleRef
	roleMembers map[string][]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		usersByID: map[string]*users.User{},
		rolesByName: map[string]*users.RoleRef{
			string(sec.RoleAdministrator): {ID: "role-admin", Name: string(sec.RoleAdministrator)},
			string(sec.RoleManager):       {ID: "role-manager", Name: string(sec.RoleManager)},
			string(sec.RoleGuest):         {ID: "role-guest", Name: string(sec.RoleGuest)},
		},
		roleMembers: map[string][]string{},
	}
}

func (f *fakeRepository) Create(_ context.Context, user *users.User) error {
	for _, existing := range f.usersByID {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	f.usersByID[user.ID] = user
	f.roleMembers[user.Role.ID] = append(f.roleMembers[user.Role.ID], user.ID)
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*users.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (f *fakeRepository) List(_ context.Context, limit, offset int) ([]*users.User, int, error) {
	all := []*users.User{}
	for _, user := range f.usersByID {
		all = append(all, user)
	}
	return all, len(all), nil
}

func (f *fakeRepository) UpdateProfile(_ context.Context, user *users.User) error {
	if _, ok := f.usersByID[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	f.usersByID[user.ID] = user
	return nil
}

func (f *fakeRepository) ChangeRole(_ context.Context, userID, oldRoleID, newRoleID string) error {
	user, ok := f.usersByID[userID]
	if !ok {
		return apperr.NotFound("User")
	}

	members := f.roleMembers[oldRoleID]
	for i, id := range members {
		if id == userID {
			f.roleMembers[oldRoleID] = append(members[:i], members[i+1:]...)
			break
		}
	}
	f.roleMembers[newRoleID] = append(f.roleMembers[newRoleID], userID)
	user.Role.ID = newRoleID
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	user, ok := f.usersByID[id]
	if !ok {
		return apperr.NotFound("User")
	}

	members := f.roleMembers[user.Role.ID]
	for i, memberID := range members {
		if memberID == id {
			f.roleMembers[user.Role.ID] = append(members[:i], members[i+1:]...)
			break
		}
	}
	delete(f.usersByID, id)
	return nil
}

func (f *fakeRepository) FindRoleByName(_ context.Context, name string) (*users.RoleRef, error) {
	role, ok := f.rolesByName[name]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

// fakeMailer records outbound verification emails.
type fakeMailer struct {
	emails []string
	fail   bool
}

func (f *fakeMailer) SendEmail(_ context.Context, address, subject, plainText string) error {
	if f.fail {
		return errors.New("provider down")
	}
	f.emails = append(f.emails, address)
	return nil
}

// # Harness

func newService(repo *fakeRepository) (*users.Service, *fakeMailer) {
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return users.NewService(repo, mailer, logger), mailer
}

func validCreate(role string) users.CreateInput {
	return users.CreateInput{
		Name:     "Dana",
		LastName: "Reyes",
		Email:    "dana@example.com",
		Password: "s3cret-pass",
		Role:     role,
	}
}

// # Tests

func TestService_Create(t *testing.T) {
	t.Run("administrator_creates_manager", func(t *testing.T) {
		repo := newFakeRepository()
		service, mailer := newService(repo)

		user, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Manager"))
		require.NoError(t, err)

		assert.False(t, user.Verified)
		assert.Len(t, user.VerificationCode, 6)
		assert.Equal(t, "Manager", user.Role.Name)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("s3cret-pass", user.PasswordHash))
		assert.Contains(t, repo.roleMembers["role-manager"], user.ID)
		assert.Equal(t, []string{"dana@example.com"}, mailer.emails)
	})

	t.Run("delivery_failure_keeps_account", func(t *testing.T) {
		repo := newFakeRepository()
		service, mailer := newService(repo)
		mailer.fail = true

		_, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Guest"))
		require.Error(t, err)
		assert.Equal(t, "DELIVERY_FAILED", apperr.As(err).Code)
		assert.Len(t, repo.usersByID, 1)
	})

	t.Run("manager_cannot_create_administrator", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)

		_, err := service.Create(context.Background(), sec.RoleManager, validCreate("Administrator"))
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Empty(t, repo.usersByID)
	})

	t.Run("guest_cannot_create_anyone", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)

		_, err := service.Create(context.Background(), sec.RoleGuest, validCreate("Guest"))
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("unknown_role_name_rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)

		_, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Superuser"))
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)

		_, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Guest"))
		require.NoError(t, err)

		_, err = service.Create(context.Background(), sec.RoleAdministrator, validCreate("Guest"))
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

func TestService_Update(t *testing.T) {
	seed := func(t *testing.T) (*fakeRepository, *users.Service, *users.User) {
		t.Helper()
		repo := newFakeRepository()
		service, _ := newService(repo)
		user, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Guest"))
		require.NoError(t, err)
		return repo, service, user
	}

	t.Run("merges_partial_profile", func(t *testing.T) {
		_, service, user := seed(t)

		newName := "Daniela"
		updated, err := service.Update(context.Background(), sec.RoleAdministrator, user.ID, users.UpdateInput{
			Name: &newName,
		})
		require.NoError(t, err)

		assert.Equal(t, "Daniela", updated.Name)
		assert.Equal(t, "Reyes", updated.LastName)
	})

	t.Run("role_change_moves_membership", func(t *testing.T) {
		repo, service, user := seed(t)

		newRole := "Manager"
		updated, err := service.Update(context.Background(), sec.RoleAdministrator, user.ID, users.UpdateInput{
			Role: &newRole,
		})
		require.NoError(t, err)

		assert.Equal(t, "Manager", updated.Role.Name)
		assert.NotContains(t, repo.roleMembers["role-guest"], user.ID)
		assert.Contains(t, repo.roleMembers["role-manager"], user.ID)
	})

	t.Run("manager_cannot_edit_administrator", func(t *testing.T) {
		repo, service, user := seed(t)
		user.Role = users.RoleRef{ID: "role-admin", Name: "Administrator"}
		repo.usersByID[user.ID] = user

		newName := "Mallory"
		_, err := service.Update(context.Background(), sec.RoleManager, user.ID, users.UpdateInput{
			Name: &newName,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("manager_cannot_promote_to_administrator", func(t *testing.T) {
		_, service, user := seed(t)

		newRole := "Administrator"
		_, err := service.Update(context.Background(), sec.RoleManager, user.ID, users.UpdateInput{
			Role: &newRole,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("rejected_role_change_writes_nothing", func(t *testing.T) {
		repo, service, user := seed(t)

		newName := "Daniela"
		badRole := "Superuser"
		_, err := service.Update(context.Background(), sec.RoleAdministrator, user.ID, users.UpdateInput{
			Name: &newName,
			Role: &badRole,
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

		// The profile edit must not have been committed alongside the
		// rejected role change.
		assert.Equal(t, "Dana", repo.usersByID[user.ID].Name)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("removes_account_and_membership", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)
		user, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Guest"))
		require.NoError(t, err)

		require.NoError(t, service.Delete(context.Background(), sec.RoleAdministrator, user.ID))

		assert.Empty(t, repo.usersByID)
		assert.NotContains(t, repo.roleMembers["role-guest"], user.ID)
	})

	t.Run("manager_cannot_delete_administrator", func(t *testing.T) {
		repo := newFakeRepository()
		service, _ := newService(repo)
		user, err := service.Create(context.Background(), sec.RoleAdministrator, validCreate("Administrator"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), sec.RoleManager, user.ID)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Contains(t, repo.usersByID, user.ID)
	})
}
