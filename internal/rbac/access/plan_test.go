// Copyright (c) 2026 Centinela. All rights reserved.

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanAttach(t *testing.T) {
	access := &Access{ID: "a1", RoleID: "r1", PermissionID: "p1"}

	changes := planAttach(access)

	assert.Equal(t, []refChange{
		{Side: sideRole, RowID: "r1", Attach: true},
		{Side: sidePermission, RowID: "p1", Attach: true},
	}, changes)
}

func TestPlanDetach(t *testing.T) {
	access := &Access{ID: "a1", RoleID: "r1", PermissionID: "p1"}

	changes := planDetach(access)

	assert.Equal(t, []refChange{
		{Side: sideRole, RowID: "r1", Attach: false},
		{Side: sidePermission, RowID: "p1", Attach: false},
	}, changes)
}

func TestPlanMove(t *testing.T) {
	testCases := []struct {
		name     string
		old      *Access
		new      *Access
		expected []refChange
	}{
		{
			name:     "no_change_touches_nothing",
			old:      &Access{RoleID: "r1", PermissionID: "p1"},
			new:      &Access{RoleID: "r1", PermissionID: "p1"},
			expected: []refChange{},
		},
		{
			name: "role_only",
			old:  &Access{RoleID: "r1", PermissionID: "p1"},
			new:  &Access{RoleID: "r2", PermissionID: "p1"},
			expected: []refChange{
				{Side: sideRole, RowID: "r1", Attach: false},
				{Side: sideRole, RowID: "r2", Attach: true},
			},
		},
		{
			name: "permission_only",
			old:  &Access{RoleID: "r1", PermissionID: "p1"},
			new:  &Access{RoleID: "r1", PermissionID: "p2"},
			expected: []refChange{
				{Side: sidePermission, RowID: "p1", Attach: false},
				{Side: sidePermission, RowID: "p2", Attach: true},
			},
		},
		{
			name: "both_sides_detach_before_attach",
			old:  &Access{RoleID: "r1", PermissionID: "p1"},
			new:  &Access{RoleID: "r2", PermissionID: "p2"},
			expected: []refChange{
				{Side: sideRole, RowID: "r1", Attach: false},
				{Side: sidePermission, RowID: "p1", Attach: false},
				{Side: sideRole, RowID: "r2", Attach: true},
				{Side: sidePermission, RowID: "p2", Attach: true},
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, planMove(testCase.old, testCase.new))
		})
	}
}
