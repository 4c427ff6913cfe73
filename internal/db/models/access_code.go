package models

import "time"

// AccessCodeState describes where a code sits in its lifecycle. Exhausted,
// expired, and deactivated are terminal with respect to consumption; there
// is no transition back to usable.
type AccessCodeState string

const (
	// AccessCodeUsable means the code currently passes the validity predicate.
	AccessCodeUsable AccessCodeState = "usable"
	// AccessCodeDeactivated means the active flag was cleared.
	AccessCodeDeactivated AccessCodeState = "deactivated"
	// AccessCodeExhausted means the usage counter reached the usage limit.
	AccessCodeExhausted AccessCodeState = "exhausted"
	// AccessCodeExpired means the expiry timestamp has passed.
	AccessCodeExpired AccessCodeState = "expired"
)

// AccessCode is a time-and-usage-limited token that grants administrator
// registration with a pre-set permission bundle. A code is usable if and
// only if it is active, under its usage limit, and not expired; all three
// conditions are necessary and none is sufficient alone.
type AccessCode struct {
	// ID is the unique identifier for the code record.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Code is the unique code string handed to the registrant.
	Code string `gorm:"unique;size:64;not null" json:"code"`
	// Description is free text describing why the code was issued.
	Description string `gorm:"size:255" json:"description"`
	// IssuedByID is the identity that issued the code.
	IssuedByID uint64 `gorm:"column:issued_by_id" json:"issuedById"`
	// Active indicates whether the code may still be consumed.
	Active bool `gorm:"default:true" json:"active"`
	// TargetSubRole is the administrator sub-role the registrant receives.
	TargetSubRole AdminSubRole `gorm:"type:varchar(30);not null;default:'team-member'" json:"targetSubRole"`
	// Grants is the permission set copied verbatim onto the registrant.
	Grants AdminPermissions `gorm:"embedded;embeddedPrefix:grant_" json:"grants"`
	// UsageLimit is how many registrations the code admits (>= 1).
	UsageLimit uint `gorm:"not null;default:1" json:"usageLimit"`
	// UsageCount is how many registrations have consumed the code.
	UsageCount uint `gorm:"not null;default:0" json:"usageCount"`
	// ExpiresAt is the absolute expiry timestamp.
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	// CreatedAt is the timestamp when the code was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the code was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// State evaluates the code lifecycle state at the given instant.
// Deactivation is reported first, then exhaustion, then expiry, matching
// the order the consume statement checks its conditions.
func (c *AccessCode) State(now time.Time) AccessCodeState {
	switch {
	case !c.Active:
		return AccessCodeDeactivated
	case c.UsageCount >= c.UsageLimit:
		return AccessCodeExhausted
	case !now.Before(c.ExpiresAt):
		return AccessCodeExpired
	}

	return AccessCodeUsable
}

// Usable reports the validity predicate: active, under the usage limit,
// and not expired at the given instant.
func (c *AccessCode) Usable(now time.Time) bool {
	return c.State(now) == AccessCodeUsable
}
