package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminPermissionsHas(t *testing.T) {
	full := AdminPermissions{
		ManageUsers:       true,
		ManageJobs:        true,
		ManageInternships: true,
		ManageAccessCodes: true,
		ManageSettings:    true,
		ViewAnalytics:     true,
	}

	for _, name := range []string{
		PermManageUsers,
		PermManageJobs,
		PermManageInternships,
		PermManageAccessCodes,
		PermManageSettings,
		PermViewAnalytics,
	} {
		assert.True(t, full.Has(name), name)
		assert.False(t, AdminPermissions{}.Has(name), name)
	}

	assert.False(t, full.Has("unknown-permission"))
	assert.False(t, full.Has(""))
}

func TestDefaultAdminPermissions(t *testing.T) {
	defaults := DefaultAdminPermissions()

	assert.True(t, defaults.ManageJobs)
	assert.True(t, defaults.ManageInternships)
	assert.True(t, defaults.ViewAnalytics)

	assert.False(t, defaults.ManageUsers)
	assert.False(t, defaults.ManageAccessCodes)
	assert.False(t, defaults.ManageSettings)
}
