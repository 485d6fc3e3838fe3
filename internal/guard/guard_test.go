// Copyright (c) 2026 Centinela. All rights reserved.

package guard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/guard"
	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/ctxutil"
	"github.com/centinela/iam/internal/platform/sec"
)

/*
TestNormalizePath covers the wildcard collapse rules for volatile segments.
*/
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"object_id_segment", "/api/v1/user/507f1f77bcf86cd799439011", "/api/v1/user/?"},
		{"numeric_segment", "/api/v1/role/12345", "/api/v1/role/?"},
		{"email_segment", "/api/v1/auth/someone@example.com/resend", "/api/v1/auth/?/resend"},
		{"version_segment_survives", "/api/v1/user", "/api/v1/user"},
		{"v2_survives", "/api/v2/permission", "/api/v2/permission"},
		{"plain_words_survive", "/health", "/health"},
		{"multiple_volatile_segments", "/api/v1/access/507f1f77bcf86cd799439011/42", "/api/v1/access/?/?"},
		{"hex_but_not_24_chars_survives", "/api/v1/user/507f1f77", "/api/v1/user/507f1f77"},
		{"uppercase_hex_id_masked", "/api/v1/user/507F1F77BCF86CD799439011", "/api/v1/user/?"},
		{"mixed_case_hex_id_masked", "/api/v1/user/507f1F77bcF86Cd799439011", "/api/v1/user/?"},
		{"root", "/", "/"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.NormalizePath(tt.path))
		})
	}
}

/*
TestModuleOf covers module derivation from the path shape.
*/
func TestModuleOf(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"api_versioned_path", "/api/v1/user/507f1f77bcf86cd799439011", "user"},
		{"api_roles_path", "/api/v1/roles", "roles"},
		{"no_api_prefix", "/health/ready", "health"},
		{"bare_segment", "/metrics", "metrics"},
		{"api_without_following_segments", "/api/v1", ""},
		{"empty_path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.ModuleOf(tt.path))
		})
	}
}

// # Middleware

// fakeDirectory scripts each lookup of the decision sequence.
type fakeDirectory struct {
	roleID        string
	roleErr       error
	permissionID  string
	permissionErr error
	allowed       bool
	accessErr     error

	// Captured permission coordinates for assertions.
	gotURL    string
	gotMethod string
	gotModule string
}

func (f *fakeDirectory) UserRole(_ context.Context, _ string) (string, error) {
	return f.roleID, f.roleErr
}

func (f *fakeDirectory) PermissionID(_ context.Context, url, method, module string) (string, error) {
	f.gotURL, f.gotMethod, f.gotModule = url, method, module
	return f.permissionID, f.permissionErr
}

func (f *fakeDirectory) HasAccess(_ context.Context, _, _ string) (bool, error) {
	return f.allowed, f.accessErr
}

// dispatch runs one request through the guard and reports whether the inner
// handler was reached.
func dispatch(t *testing.T, directory *fakeDirectory, authenticated bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	handler := guard.New(directory).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/user/507f1f77bcf86cd799439011", nil)
	if authenticated {
		claims := &sec.AuthClaims{UserID: "user-1", Email: "ada@example.com", Role: "Guest"}
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder, reached
}

/*
TestGuard_Middleware walks the decision sequence: authentication, role
resolution, permission match, and the access grant.
*/
func TestGuard_Middleware(t *testing.T) {
	t.Run("unauthenticated_gets_401_not_403", func(t *testing.T) {
		directory := &fakeDirectory{}

		recorder, reached := dispatch(t, directory, false)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, reached)
	})

	t.Run("missing_role_assignment_denied", func(t *testing.T) {
		directory := &fakeDirectory{roleErr: apperr.NotFound("Role assignment")}

		recorder, reached := dispatch(t, directory, true)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "User has no role assigned")
		assert.False(t, reached)
	})

	t.Run("matrix_miss_denied", func(t *testing.T) {
		directory := &fakeDirectory{roleID: "role-1", permissionErr: apperr.NotFound("Permission")}

		recorder, reached := dispatch(t, directory, true)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Permission not found")
		assert.False(t, reached)
	})

	t.Run("no_grant_denied", func(t *testing.T) {
		directory := &fakeDirectory{roleID: "role-1", permissionID: "perm-1", allowed: false}

		recorder, reached := dispatch(t, directory, true)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Access denied")
		assert.False(t, reached)
	})

	t.Run("grant_passes_through", func(t *testing.T) {
		directory := &fakeDirectory{roleID: "role-1", permissionID: "perm-1", allowed: true}

		recorder, reached := dispatch(t, directory, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, reached)

		// The lookup used the normalized URL and derived module.
		assert.Equal(t, "/api/v1/user/?", directory.gotURL)
		assert.Equal(t, http.MethodGet, directory.gotMethod)
		assert.Equal(t, "user", directory.gotModule)
	})

	t.Run("storage_failure_fails_closed", func(t *testing.T) {
		directory := &fakeDirectory{roleID: "role-1", permissionID: "perm-1", accessErr: errors.New("connection reset")}

		recorder, reached := dispatch(t, directory, true)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.False(t, reached)
	})
}
