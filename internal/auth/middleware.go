package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// localsIdentityKey is the fiber.Locals key holding the resolved identity.
const localsIdentityKey = "identity"

// CurrentIdentity returns the identity resolved by the Require* middleware,
// or nil when the request carried no valid credential.
func CurrentIdentity(c *fiber.Ctx) *models.User {
	identity, _ := c.Locals(localsIdentityKey).(*models.User)
	return identity
}

// bearerFromHeader extracts the token from an Authorization: Bearer header.
func bearerFromHeader(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// resolve loads the caller identity into Locals. Unauthenticated requests and
// lookup failures are answered directly; on success the chain continues.
func resolve(c *fiber.Ctx, svc *Service) (*models.User, error) {
	tokenString := bearerFromHeader(c)
	if tokenString == "" {
		return nil, c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "unauthenticated"})
	}

	identity, err := svc.ResolveBearer(c.UserContext(), tokenString)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired),
			errors.Is(err, ErrTokenInvalid),
			errors.Is(err, ErrIdentityNotFound):
			return nil, c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "unauthenticated"})
		default:
			log.Error().Err(err).Msg("failed to resolve bearer credential")

			return nil, c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"error": "transient"})
		}
	}

	c.Locals(localsIdentityKey, identity)

	return identity, nil
}

// answerDeny writes the HTTP response for a gate denial.
func answerDeny(c *fiber.Ctx, d Decision) error {
	if d.Reason == DenyUnauthenticated {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "unauthenticated"})
	}

	return c.Status(fiber.StatusForbidden).
		JSON(fiber.Map{"error": "forbidden", "reason": string(d.Reason)})
}

// Require creates fiber middleware enforcing the given requirement for every
// request on the route. The resolved identity is stored in Locals for the
// downstream handler.
func Require(svc *Service, req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := resolve(c, svc)
		if identity == nil {
			return err
		}

		if decision := Authorize(identity, req); !decision.Allowed {
			log.Warn().Uint64("user_id", identity.ID).
				Str("permission", req.Permission).
				Str("reason", string(decision.Reason)).
				Msg("request denied by authorization gate")

			return answerDeny(c, decision)
		}

		return c.Next()
	}
}

// RequireAuth requires any authenticated identity.
func RequireAuth(svc *Service) fiber.Handler {
	return Require(svc, Requirement{})
}

// RequireRole requires one of the given coarse roles.
func RequireRole(svc *Service, roles ...models.Role) fiber.Handler {
	return Require(svc, Requirement{Roles: roles})
}

// RequirePermission requires the named permission. Super-administrators
// always pass; team members pass iff the flag is set on their account.
func RequirePermission(svc *Service, permission string) fiber.Handler {
	return Require(svc, Requirement{Permission: permission})
}

// RequireAdmin requires the administrator role without naming a permission;
// any administrator passes regardless of sub-role or flags.
func RequireAdmin(svc *Service) fiber.Handler {
	return Require(svc, Requirement{Roles: []models.Role{models.RoleAdministrator}})
}
