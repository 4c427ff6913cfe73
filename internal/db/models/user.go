package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Role is the coarse account role of a user.
type Role string

const (
	// RoleJobSeeker is a person searching and applying for postings.
	RoleJobSeeker Role = "job-seeker"
	// RoleEmployer is a company account that creates job and internship postings.
	RoleEmployer Role = "employer"
	// RoleAdministrator is a back-office operator; capability is further
	// narrowed by AdminSubRole and the AdminPermissions flags.
	RoleAdministrator Role = "administrator"
)

// AdminSubRole narrows the administrator role.
type AdminSubRole string

const (
	// SubRoleSuperAdmin passes every permission check unconditionally.
	SubRoleSuperAdmin AdminSubRole = "super-administrator"
	// SubRoleTeamMember passes only the permission checks whose flag is set.
	SubRoleTeamMember AdminSubRole = "team-member"
)

// User represents an account in the system: a job seeker, an employer, or an
// administrator. The email is the case-insensitive identity key and is stored
// lowercased. Profile fields are optional and role-dependent (the company
// fields are only used by employers).
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Email is the unique, lowercased login email.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Password is the Argon2id hash of the password, never the plaintext.
	Password string `gorm:"size:255" json:"-"`
	// Name is the display name.
	Name string `gorm:"size:100;not null" json:"name"`
	// Role is the coarse account role.
	Role Role `gorm:"type:varchar(20);not null;default:'job-seeker'" json:"role"`
	// AdminSubRole is set only when Role is administrator.
	AdminSubRole AdminSubRole `gorm:"type:varchar(30)" json:"adminSubRole,omitempty"`
	// Permissions are meaningful only when Role is administrator. For any
	// other role the stored flags are ignored by authorization checks.
	Permissions AdminPermissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`

	// Profile fields.
	Headline  string `gorm:"size:255" json:"headline,omitempty"`
	Bio       string `gorm:"size:2000" json:"bio,omitempty"`
	Skills    string `gorm:"size:1000" json:"-"`
	AvatarURL string `gorm:"size:512" json:"avatarUrl,omitempty"`
	ResumeURL string `gorm:"size:512" json:"resumeUrl,omitempty"`

	// Employer fields.
	CompanyName    string `gorm:"size:255" json:"companyName,omitempty"`
	CompanyLogoURL string `gorm:"size:512" json:"companyLogoUrl,omitempty"`

	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail lowercases and trims an email so that lookups and the
// unique index treat addresses case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdministrator reports whether the account carries the administrator role.
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// IsSuperAdmin reports whether the account is a super-administrator.
// Super-administrators satisfy every permission check, including actions not
// expressible through the AdminPermissions flags.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleAdministrator && u.AdminSubRole == SubRoleSuperAdmin
}

// SkillList returns the stored skills as a list. Skill input is normalized to
// a comma-separated string once at the HTTP boundary; this is the read side.
func (u *User) SkillList() []string {
	return SplitList(u.Skills)
}

// SplitList splits a comma-separated string into trimmed, non-empty items.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// JoinList is the inverse of SplitList, used when persisting list input.
func JoinList(items []string) string {
	out := make([]string, 0, len(items))

	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}

	return strings.Join(out, ",")
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored
// hashed password. It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
