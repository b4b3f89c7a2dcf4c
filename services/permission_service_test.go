package services

import (
	"testing"
	"time"

	"case-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermissionORsAcrossAssignments(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Two Hats", "twohats@example.org")

	readCases := seedRole(t, db, "case_reader", models.Permission{Resource: "cases", Action: "read"})
	approveWelfare := seedRole(t, db, "welfare_approver", models.Permission{Resource: "welfare", Action: "approve"})
	assignRole(t, db, user.UserID, readCases.RoleID, true, nil)
	assignRole(t, db, user.UserID, approveWelfare.RoleID, true, nil)

	for _, check := range []struct {
		resource, action string
		want             bool
	}{
		{"cases", "read", true},
		{"welfare", "approve", true},
		{"cases", "delete", false},
		{"welfare", "read", false},
	} {
		got, err := HasPermission(db, user.UserID, check.resource, check.action)
		require.NoError(t, err)
		assert.Equal(t, check.want, got, "%s/%s", check.resource, check.action)
	}
}

func TestHasPermissionWildcardAction(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Wildcard", "wildcard@example.org")
	role := seedRole(t, db, "case_manager", models.Permission{Resource: "cases", Action: PermissionAll})
	assignRole(t, db, user.UserID, role.RoleID, true, nil)

	for _, action := range []string{"read", "create", "update", "delete", "approve"} {
		got, err := HasPermission(db, user.UserID, "cases", action)
		require.NoError(t, err)
		assert.True(t, got, action)
	}

	got, err := HasPermission(db, user.UserID, "welfare", "read")
	require.NoError(t, err)
	assert.False(t, got, "wildcard is per-resource")
}

func TestHasPermissionLegacyRoleShortCircuit(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Admin", "admin@example.org")
	admin := seedRole(t, db, "admin")
	assignRole(t, db, user.UserID, admin.RoleID, true, nil)

	got, err := HasPermission(db, user.UserID, "anything", "whatsoever")
	require.NoError(t, err)
	assert.True(t, got)

	assert.True(t, IsLegacyAuthorizedRole("DCM"))
	assert.True(t, IsLegacyAuthorizedRole(" super_admin "))
	assert.False(t, IsLegacyAuthorizedRole("counselor"))
}

func TestHasPermissionIgnoresExpiredAndInactiveAssignments(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Lapsed", "lapsed@example.org")
	role := seedRole(t, db, "case_reader", models.Permission{Resource: "cases", Action: "read"})

	past := time.Now().Add(-time.Minute)
	assignRole(t, db, user.UserID, role.RoleID, true, &past)

	got, err := HasPermission(db, user.UserID, "cases", "read")
	require.NoError(t, err)
	assert.False(t, got)

	assignRole(t, db, user.UserID, role.RoleID, false, nil)
	got, err = HasPermission(db, user.UserID, "cases", "read")
	require.NoError(t, err)
	assert.False(t, got)

	assignRole(t, db, user.UserID, role.RoleID, true, nil)
	got, err = HasPermission(db, user.UserID, "cases", "read")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestHasAnyRole(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Officer", "officer2@example.org")
	role := seedRole(t, db, "welfare_officer")
	assignRole(t, db, user.UserID, role.RoleID, true, nil)

	got, err := HasAnyRole(db, user.UserID, "admin", "Welfare_Officer")
	require.NoError(t, err)
	assert.True(t, got, "match is case-insensitive")

	got, err = HasAnyRole(db, user.UserID, "admin", "super_admin")
	require.NoError(t, err)
	assert.False(t, got)
}
