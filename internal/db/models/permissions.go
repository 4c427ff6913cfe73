package models

// Permission names for the six AdminPermissions flags.
const (
	PermManageUsers       = "manage-users"
	PermManageJobs        = "manage-jobs"
	PermManageInternships = "manage-internships"
	PermManageAccessCodes = "manage-access-codes"
	PermManageSettings    = "manage-settings"
	PermViewAnalytics     = "view-analytics"
)

// AdminPermissions is the fixed-shape permission set carried by administrator
// accounts and granted by access codes. Each flag is an independent boolean.
// The flags are only meaningful while the owning account has the
// administrator role; for every other role they must be ignored.
type AdminPermissions struct {
	// ManageUsers allows managing user accounts (list, update, delete).
	ManageUsers bool `gorm:"default:false" json:"manageUsers"`
	// ManageJobs allows managing job and government-job postings system-wide.
	ManageJobs bool `gorm:"default:false" json:"manageJobs"`
	// ManageInternships allows managing internship postings system-wide.
	ManageInternships bool `gorm:"default:false" json:"manageInternships"`
	// ManageAccessCodes allows issuing and deactivating admin access codes.
	ManageAccessCodes bool `gorm:"default:false" json:"manageAccessCodes"`
	// ManageSettings allows changing application-wide settings.
	ManageSettings bool `gorm:"default:false" json:"manageSettings"`
	// ViewAnalytics allows viewing the admin analytics endpoints.
	ViewAnalytics bool `gorm:"default:false" json:"viewAnalytics"`
}

// DefaultAdminPermissions returns the permission set applied to a new
// administrator account or access code when none is given explicitly.
// Consulted at construction time only: authorization checks read the flags
// stored on the account, never these defaults.
func DefaultAdminPermissions() AdminPermissions {
	return AdminPermissions{
		ManageJobs:        true,
		ManageInternships: true,
		ViewAnalytics:     true,
	}
}

// Has reports whether the named permission flag is set.
// Unknown names report false.
func (p AdminPermissions) Has(name string) bool {
	switch name {
	case PermManageUsers:
		return p.ManageUsers
	case PermManageJobs:
		return p.ManageJobs
	case PermManageInternships:
		return p.ManageInternships
	case PermManageAccessCodes:
		return p.ManageAccessCodes
	case PermManageSettings:
		return p.ManageSettings
	case PermViewAnalytics:
		return p.ViewAnalytics
	}

	return false
}
