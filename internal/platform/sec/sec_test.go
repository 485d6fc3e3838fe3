// Copyright (c) 2026 Centinela. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/platform/sec"
)

/*
TestRoleName_CanManage exercises the account-management hierarchy rules.
*/
func TestRoleName_CanManage(t *testing.T) {
	tests := []struct {
		name    string
		actor   sec.RoleName
		target  sec.RoleName
		allowed bool
	}{
		{"admin_manages_admin", sec.RoleAdministrator, sec.RoleAdministrator, true},
		{"admin_manages_guest", sec.RoleAdministrator, sec.RoleGuest, true},
		{"manager_manages_guest", sec.RoleManager, sec.RoleGuest, true},
		{"manager_manages_manager", sec.RoleManager, sec.RoleManager, true},
		{"manager_blocked_from_admin", sec.RoleManager, sec.RoleAdministrator, false},
		{"guest_manages_nothing", sec.RoleGuest, sec.RoleGuest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.actor.CanManage(tt.target))
		})
	}
}

/*
TestRoleName_IsValid confirms the enumeration is closed.
*/
func TestRoleName_IsValid(t *testing.T) {
	assert.True(t, sec.RoleName("Administrator").IsValid())
	assert.True(t, sec.RoleName("Manager").IsValid())
	assert.True(t, sec.RoleName("Guest").IsValid())
	assert.False(t, sec.RoleName("administrator").IsValid())
	assert.False(t, sec.RoleName("Root").IsValid())
}

/*
TestGenerateNumericCode verifies length, charset, and basic uniqueness.
*/
func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 32; i++ {
		code, err := sec.GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, ch := range code {
			assert.GreaterOrEqual(t, ch, '0')
			assert.LessOrEqual(t, ch, '9')
		}
		seen[code] = true
	}

	// 32 draws from a million-value space should essentially never collide
	// down to a single value.
	assert.Greater(t, len(seen), 1)
}

/*
TestGenerateNumericCode_InvalidLength rejects non-positive lengths.
*/
func TestGenerateNumericCode_InvalidLength(t *testing.T) {
	_, err := sec.GenerateNumericCode(0)
	require.Error(t, err)
}

/*
TestHashPassword_RoundTrip verifies bcrypt hashing and comparison.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("P@ssw0rd1")
	require.NoError(t, err)
	assert.NotEqual(t, "P@ssw0rd1", hash)

	assert.True(t, sec.CheckPasswordHash("P@ssw0rd1", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
}
