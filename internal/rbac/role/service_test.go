// Copyright (c) 2026 Centinela. All rights reserved.

package role_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/rbac/role"
)

// # Test Doubles

type fakeRepository struct {
	rolesByID map[string]*role.Role
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rolesByID: map[string]*role.Role{}}
}

func (f *fakeRepository) Create(_ context.Context, created *role.Role) error {
	for _, existing := range f.rolesByID {
		if existing.Name == created.Name {
			return apperr.Conflict("Role already exists")
		}
	}
	f.rolesByID[created.ID] = created
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*role.Role, error) {
	found, ok := f.rolesByID[id]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return found, nil
}

func (f *fakeRepository) List(_ context.Context, limit, offset int) ([]*role.Role, int, error) {
	all := []*role.Role{}
	for _, r := range f.rolesByID {
		all = append(all, r)
	}
	return all, len(all), nil
}

func (f *fakeRepository) Update(_ context.Context, updated *role.Role) error {
	if _, ok := f.rolesByID[updated.ID]; !ok {
		return apperr.NotFound("Role")
	}
	f.rolesByID[updated.ID] = updated
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	found, ok := f.rolesByID[id]
	if !ok {
		return apperr.NotFound("Role")
	}
	if len(found.UserIDs) > 0 || len(found.AccessIDs) > 0 {
		return apperr.Conflict("Role is still assigned to users or accesses")
	}
	delete(f.rolesByID, id)
	return nil
}

func newService(repo *fakeRepository) *role.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return role.NewService(repo, logger)
}

// # Tests

func TestService_Create(t *testing.T) {
	t.Run("accepts_known_role_name", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)

		created, err := service.Create(context.Background(), role.CreateInput{
			Name:        "Manager",
			Description: "Manages users and grants",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Manager", created.Name)
	})

	t.Run("rejects_name_outside_enumeration", func(t *testing.T) {
		service := newService(newFakeRepository())

		_, err := service.Create(context.Background(), role.CreateInput{Name: "Superuser"})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("duplicate_name_conflicts", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)

		_, err := service.Create(context.Background(), role.CreateInput{Name: "Guest"})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), role.CreateInput{Name: "Guest"})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("merges_partial_input", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)
		created, err := service.Create(context.Background(), role.CreateInput{
			Name:        "Guest",
			Description: "Default",
		})
		require.NoError(t, err)

		description := "Self-registered accounts"
		updated, err := service.Update(context.Background(), created.ID, role.UpdateInput{
			Description: &description,
		})
		require.NoError(t, err)

		assert.Equal(t, "Guest", updated.Name)
		assert.Equal(t, "Self-registered accounts", updated.Description)
	})

	t.Run("rejects_rename_outside_enumeration", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)
		created, err := service.Create(context.Background(), role.CreateInput{Name: "Guest"})
		require.NoError(t, err)

		name := "Root"
		_, err = service.Update(context.Background(), created.ID, role.UpdateInput{Name: &name})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("referenced_role_conflicts", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)
		created, err := service.Create(context.Background(), role.CreateInput{Name: "Guest"})
		require.NoError(t, err)

		repo.rolesByID[created.ID].UserIDs = []string{"user-1"}

		err = service.Delete(context.Background(), created.ID)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Contains(t, repo.rolesByID, created.ID)
	})

	t.Run("unreferenced_role_removed", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)
		created, err := service.Create(context.Background(), role.CreateInput{Name: "Guest"})
		require.NoError(t, err)

		require.NoError(t, service.Delete(context.Background(), created.ID))
		assert.Empty(t, repo.rolesByID)
	})

	t.Run("missing_role_not_found", func(t *testing.T) {
		service := newService(newFakeRepository())

		err := service.Delete(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}
