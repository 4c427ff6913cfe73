package auth

import (
	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// DenyReason tags why the gate refused an operation.
type DenyReason string

const (
	// DenyUnauthenticated means no identity could be resolved for the caller.
	DenyUnauthenticated DenyReason = "unauthenticated"
	// DenyWrongRole means the identity's coarse role does not match.
	DenyWrongRole DenyReason = "wrong-role"
	// DenyMissingPermission means the identity is an administrator but lacks
	// the named permission flag and is not a super-administrator.
	DenyMissingPermission DenyReason = "missing-permission"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Requirement describes what a protected operation demands of the caller.
// A named Permission implies the administrator role. An empty Requirement
// only demands an authenticated identity.
type Requirement struct {
	// Roles the caller may have. Empty means any role.
	Roles []models.Role
	// Permission is one of the models.Perm* names. Empty means no specific
	// permission; combined with Roles containing administrator this yields a
	// coarse admin-only check that any administrator passes.
	Permission string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether an identity may perform an operation with the
// given requirement. It is a pure predicate over already-loaded state and
// denies by default: a nil or unsaved identity is always refused.
//
// Super-administrators satisfy every permission check unconditionally.
// Team members satisfy a permission check iff the named flag is set.
// Identities whose role is not administrator never satisfy a permission
// check, regardless of any flags present in storage.
func Authorize(identity *models.User, req Requirement) Decision {
	if identity == nil || identity.ID == 0 {
		return deny(DenyUnauthenticated)
	}

	if req.Permission != "" {
		if !identity.IsAdministrator() {
			return deny(DenyWrongRole)
		}

		if identity.IsSuperAdmin() || identity.Permissions.Has(req.Permission) {
			return allow()
		}

		return deny(DenyMissingPermission)
	}

	if len(req.Roles) > 0 {
		for _, role := range req.Roles {
			if identity.Role == role {
				return allow()
			}
		}

		return deny(DenyWrongRole)
	}

	return allow()
}

// AuthorizeOwner allows the owner of a resource, or anyone passing the given
// permission check. This replaces per-handler "is creator or admin" checks
// with a single parameterized gate.
func AuthorizeOwner(identity *models.User, ownerID uint64, permission string) Decision {
	if identity == nil || identity.ID == 0 {
		return deny(DenyUnauthenticated)
	}

	if identity.ID == ownerID {
		return allow()
	}

	return Authorize(identity, Requirement{Permission: permission})
}

// Capability is the derived yes/no answer to "may this identity perform this
// specific protected action": administrator role and either the
// super-administrator sub-role or the named permission flag.
func Capability(identity *models.User, permission string) bool {
	return Authorize(identity, Requirement{Permission: permission}).Allowed
}
