package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

func jobSeeker() *models.User {
	return &models.User{ID: 1, Role: models.RoleJobSeeker}
}

func employer() *models.User {
	return &models.User{ID: 2, Role: models.RoleEmployer}
}

func teamMember(perms models.AdminPermissions) *models.User {
	return &models.User{
		ID:           3,
		Role:         models.RoleAdministrator,
		AdminSubRole: models.SubRoleTeamMember,
		Permissions:  perms,
	}
}

func superAdmin() *models.User {
	return &models.User{
		ID:           4,
		Role:         models.RoleAdministrator,
		AdminSubRole: models.SubRoleSuperAdmin,
	}
}

func TestAuthorize(t *testing.T) {
	testCases := []struct {
		name           string
		identity       *models.User
		req            Requirement
		expectAllowed  bool
		expectedReason DenyReason
	}{
		{
			name:           "nil identity is unauthenticated",
			identity:       nil,
			req:            Requirement{},
			expectedReason: DenyUnauthenticated,
		},
		{
			name:           "unsaved identity is unauthenticated",
			identity:       &models.User{Role: models.RoleAdministrator},
			req:            Requirement{Permission: models.PermManageUsers},
			expectedReason: DenyUnauthenticated,
		},
		{
			name:          "empty requirement allows any identity",
			identity:      jobSeeker(),
			req:           Requirement{},
			expectAllowed: true,
		},
		{
			name:           "permission check denies job seeker with wrong role",
			identity:       jobSeeker(),
			req:            Requirement{Permission: models.PermManageJobs},
			expectedReason: DenyWrongRole,
		},
		{
			name: "permission check denies employer even with stored flags",
			identity: &models.User{
				ID:          5,
				Role:        models.RoleEmployer,
				Permissions: models.AdminPermissions{ManageUsers: true},
			},
			req:            Requirement{Permission: models.PermManageUsers},
			expectedReason: DenyWrongRole,
		},
		{
			name:          "team member passes with flag set",
			identity:      teamMember(models.AdminPermissions{ManageUsers: true}),
			req:           Requirement{Permission: models.PermManageUsers},
			expectAllowed: true,
		},
		{
			name:           "team member denied without flag",
			identity:       teamMember(models.AdminPermissions{ManageJobs: true}),
			req:            Requirement{Permission: models.PermManageUsers},
			expectedReason: DenyMissingPermission,
		},
		{
			name:          "super admin passes every permission check",
			identity:      superAdmin(),
			req:           Requirement{Permission: models.PermManageSettings},
			expectAllowed: true,
		},
		{
			name:          "role check passes matching role",
			identity:      employer(),
			req:           Requirement{Roles: []models.Role{models.RoleEmployer}},
			expectAllowed: true,
		},
		{
			name:          "role check passes any of several roles",
			identity:      jobSeeker(),
			req:           Requirement{Roles: []models.Role{models.RoleEmployer, models.RoleJobSeeker}},
			expectAllowed: true,
		},
		{
			name:           "role check denies other role",
			identity:       jobSeeker(),
			req:            Requirement{Roles: []models.Role{models.RoleAdministrator}},
			expectedReason: DenyWrongRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Authorize(tc.identity, tc.req)

			assert.Equal(t, tc.expectAllowed, decision.Allowed)
			if !tc.expectAllowed {
				assert.Equal(t, tc.expectedReason, decision.Reason)
			}
		})
	}
}

func TestAuthorizeEveryPermissionName(t *testing.T) {
	// Each flag must gate exactly its own permission name.
	flagSetters := map[string]models.AdminPermissions{
		models.PermManageUsers:       {ManageUsers: true},
		models.PermManageJobs:        {ManageJobs: true},
		models.PermManageInternships: {ManageInternships: true},
		models.PermManageAccessCodes: {ManageAccessCodes: true},
		models.PermManageSettings:    {ManageSettings: true},
		models.PermViewAnalytics:     {ViewAnalytics: true},
	}

	for granted, perms := range flagSetters {
		identity := teamMember(perms)

		for _, checked := range []string{
			models.PermManageUsers,
			models.PermManageJobs,
			models.PermManageInternships,
			models.PermManageAccessCodes,
			models.PermManageSettings,
			models.PermViewAnalytics,
		} {
			decision := Authorize(identity, Requirement{Permission: checked})

			assert.Equal(t, granted == checked, decision.Allowed,
				"flag %s checked against %s", granted, checked)
		}
	}
}

func TestAuthorizeOwner(t *testing.T) {
	testCases := []struct {
		name          string
		identity      *models.User
		ownerID       uint64
		expectAllowed bool
	}{
		{
			name:          "owner always allowed",
			identity:      employer(),
			ownerID:       2,
			expectAllowed: true,
		},
		{
			name:          "non-owner without permission denied",
			identity:      employer(),
			ownerID:       99,
			expectAllowed: false,
		},
		{
			name:          "non-owner with permission allowed",
			identity:      teamMember(models.AdminPermissions{ManageJobs: true}),
			ownerID:       99,
			expectAllowed: true,
		},
		{
			name:          "super admin allowed on any resource",
			identity:      superAdmin(),
			ownerID:       99,
			expectAllowed: true,
		},
		{
			name:          "nil identity denied",
			identity:      nil,
			ownerID:       1,
			expectAllowed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := AuthorizeOwner(tc.identity, tc.ownerID, models.PermManageJobs)
			assert.Equal(t, tc.expectAllowed, decision.Allowed)
		})
	}
}

func TestCapability(t *testing.T) {
	assert.True(t, Capability(superAdmin(), models.PermManageAccessCodes))
	assert.True(t, Capability(teamMember(models.AdminPermissions{ManageAccessCodes: true}), models.PermManageAccessCodes))
	assert.False(t, Capability(teamMember(models.AdminPermissions{}), models.PermManageAccessCodes))
	assert.False(t, Capability(jobSeeker(), models.PermManageAccessCodes))
	assert.False(t, Capability(nil, models.PermManageAccessCodes))
}
