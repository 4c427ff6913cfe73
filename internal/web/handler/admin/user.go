package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	userctl "github.com/CareerDesk/CareerDesk/internal/db/controller/user"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

// ListUsers returns users matching the query filters.
func (s *Service) ListUsers(c *fiber.Ctx) error {
	page, pageSize, offset := handler.Paginate(c)

	db, cancel := s.dbCtx(c)
	defer cancel()

	users, total, err := userctl.List(db, userctl.Filter{
		Role:   models.Role(c.Query("role")),
		Query:  c.Query("q"),
		Limit:  pageSize,
		Offset: offset,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"items":    users,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

// GetUser returns one user.
func (s *Service) GetUser(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	user, err := userctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Fail(c, err)
	}

	return c.JSON(user)
}

// UpdateUser edits another account. Name edits are open to any manage-users
// holder; changing the role, sub-role, or permission flags is reserved for
// super-administrators so that a team member can never escalate an account
// (including their own) beyond what they were granted.
func (s *Service) UpdateUser(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	var in struct {
		Name         string                   `json:"name"         validate:"omitempty,min=2,max=100"`
		Role         string                   `json:"role"         validate:"omitempty,oneof=job-seeker employer administrator"`
		AdminSubRole string                   `json:"adminSubRole" validate:"omitempty,oneof=super-administrator team-member"`
		Permissions  *models.AdminPermissions `json:"permissions"`
	}

	if err = c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	user, err := userctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Fail(c, err)
	}

	actor := authz.CurrentIdentity(c)

	touchesAccess := in.Role != "" || in.AdminSubRole != "" || in.Permissions != nil
	if touchesAccess && !actor.IsSuperAdmin() {
		return handler.Forbidden(c, string(authz.DenyMissingPermission))
	}

	if in.Name != "" {
		user.Name = in.Name
	}

	if in.Role != "" {
		user.Role = models.Role(in.Role)
		if user.Role != models.RoleAdministrator {
			user.AdminSubRole = ""
			user.Permissions = models.AdminPermissions{}
		}
	}

	if in.AdminSubRole != "" {
		user.AdminSubRole = models.AdminSubRole(in.AdminSubRole)
	}

	if in.Permissions != nil {
		user.Permissions = *in.Permissions
	}

	if err = userctl.Update(db, user); err != nil {
		log.Error().Err(err).Msg("failed to update user")
		return handler.Fail(c, err)
	}

	return c.JSON(user)
}

// DeleteUser removes an account. Self-deletion is blocked so an
// administrator cannot lock the system by removing the last super-admin that
// happens to be themselves mid-session.
func (s *Service) DeleteUser(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	actor := authz.CurrentIdentity(c)
	if actor.ID == id {
		return handler.Validation(c, "cannot delete your own account")
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	target, err := userctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Fail(c, err)
	}

	// Only a super-administrator may remove another administrator.
	if target.IsAdministrator() && !actor.IsSuperAdmin() {
		return handler.Forbidden(c, string(authz.DenyMissingPermission))
	}

	if err = userctl.Delete(db, id); err != nil {
		log.Error().Err(err).Msg("failed to delete user")
		return handler.Fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
