// Copyright (c) 2026 Centinela. All rights reserved.

package permission_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/rbac/permission"
)

// # Test Doubles

type fakeRepository struct {
	permissionsByID map[string]*permission.Permission
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{permissionsByID: map[string]*permission.Permission{}}
}

func (f *fakeRepository) Create(_ context.Context, created *permission.Permission) error {
	for _, existing := range f.permissionsByID {
		if existing.URL == created.URL && existing.Method == created.Method && existing.Module == created.Module {
			return apperr.Conflict("Permission already exists")
		}
	}
	f.permissionsByID[created.ID] = created
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*permission.Permission, error) {
	found, ok := f.permissionsByID[id]
	if !ok {
		return nil, apperr.NotFound("Permission")
	}
	return found, nil
}

func (f *fakeRepository) List(_ context.Context, filter permission.Filter, limit, offset int) ([]*permission.Permission, int, error) {
	matched := []*permission.Permission{}
	for _, p := range f.permissionsByID {
		if filter.Module != "" && p.Module != filter.Module {
			continue
		}
		if filter.Method != "" && p.Method != filter.Method {
			continue
		}
		matched = append(matched, p)
	}
	return matched, len(matched), nil
}

func (f *fakeRepository) Update(_ context.Context, updated *permission.Permission) error {
	if _, ok := f.permissionsByID[updated.ID]; !ok {
		return apperr.NotFound("Permission")
	}
	f.permissionsByID[updated.ID] = updated
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	found, ok := f.permissionsByID[id]
	if !ok {
		return apperr.NotFound("Permission")
	}
	if len(found.AccessIDs) > 0 {
		return apperr.Conflict("Permission is still referenced by accesses")
	}
	delete(f.permissionsByID, id)
	return nil
}

func newService(repo *fakeRepository) *permission.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return permission.NewService(repo, logger)
}

// # Tests

func TestService_Create(t *testing.T) {
	t.Run("normalizes_volatile_url_segments", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)

		created, err := service.Create(context.Background(), permission.CreateInput{
			URL:    "/api/v1/user/507f1f77bcf86cd799439011",
			Method: "GET",
		})
		require.NoError(t, err)

		assert.Equal(t, "/api/v1/user/?", created.URL)
	})

	t.Run("derives_module_when_empty", func(t *testing.T) {
		service := newService(newFakeRepository())

		created, err := service.Create(context.Background(), permission.CreateInput{
			URL:    "/api/v1/roles",
			Method: "POST",
		})
		require.NoError(t, err)

		assert.Equal(t, "roles", created.Module)
	})

	t.Run("explicit_module_wins", func(t *testing.T) {
		service := newService(newFakeRepository())

		created, err := service.Create(context.Background(), permission.CreateInput{
			URL:    "/api/v1/roles",
			Method: "POST",
			Module: "rbac",
		})
		require.NoError(t, err)

		assert.Equal(t, "rbac", created.Module)
	})

	t.Run("rejects_unknown_method", func(t *testing.T) {
		service := newService(newFakeRepository())

		_, err := service.Create(context.Background(), permission.CreateInput{
			URL:    "/api/v1/roles",
			Method: "TRACE",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("duplicate_coordinates_conflict", func(t *testing.T) {
		service := newService(newFakeRepository())

		input := permission.CreateInput{URL: "/api/v1/roles", Method: "GET"}
		_, err := service.Create(context.Background(), input)
		require.NoError(t, err)

		_, err = service.Create(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

func TestService_List(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	_, err := service.Create(context.Background(), permission.CreateInput{URL: "/api/v1/roles", Method: "GET"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), permission.CreateInput{URL: "/api/v1/users", Method: "POST"})
	require.NoError(t, err)

	byModule, total, err := service.List(context.Background(), permission.Filter{Module: "roles"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "roles", byModule[0].Module)

	byMethod, total, err := service.List(context.Background(), permission.Filter{Method: "POST"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "POST", byMethod[0].Method)
}

func TestService_Delete(t *testing.T) {
	t.Run("referenced_permission_conflicts", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)

		created, err := service.Create(context.Background(), permission.CreateInput{URL: "/api/v1/roles", Method: "GET"})
		require.NoError(t, err)

		repo.permissionsByID[created.ID].AccessIDs = []string{"access-1"}

		err = service.Delete(context.Background(), created.ID)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("unreferenced_permission_removed", func(t *testing.T) {
		repo := newFakeRepository()
		service := newService(repo)

		created, err := service.Create(context.Background(), permission.CreateInput{URL: "/api/v1/roles", Method: "GET"})
		require.NoError(t, err)

		require.NoError(t, service.Delete(context.Background(), created.ID))
		assert.Empty(t, repo.permissionsByID)
	})
}
