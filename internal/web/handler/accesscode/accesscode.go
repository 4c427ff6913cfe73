// Package accesscode exposes the /admin-access-codes endpoints for issuing,
// listing, validating, deactivating, and retiring administrator access codes.
package accesscode

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	codes "github.com/CareerDesk/CareerDesk/internal/accesscode"
	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for access-code routes.
	Path = "/admin-access-codes"
)

// Service is the access-code handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	codes     *codes.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, codeService *codes.Service, authService *authz.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.codes = codeService
	s.validator = validator.New()

	// Validation is public: a prospective administrator holds a code string
	// but no credential yet.
	app.Get(Path+"/validate/:code", s.Validate)

	gate := authz.RequirePermission(authService, models.PermManageAccessCodes)

	app.Post(Path, gate, s.Issue)
	app.Get(Path, gate, s.List)
	app.Get(Path+"/:id", gate, s.Get)
	app.Patch(Path+"/:id/deactivate", gate, s.Deactivate)
	app.Delete(Path+"/:id", authz.RequireAdmin(authService), s.Retire)
}

// Issue creates a new access code.
func (s *Service) Issue(c *fiber.Ctx) error {
	var in struct {
		Code          string                   `json:"code"          validate:"omitempty,min=8,max=64"`
		Description   string                   `json:"description"   validate:"max=500"`
		ExpiresAt     time.Time                `json:"expiresAt"     validate:"required"`
		UsageLimit    uint                     `json:"usageLimit"`
		TargetSubRole string                   `json:"targetSubRole" validate:"omitempty,oneof=super-administrator team-member"`
		Grants        *models.AdminPermissions `json:"grants"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	code, err := s.codes.Issue(c.UserContext(), authz.CurrentIdentity(c), codes.IssueInput{
		Code:          in.Code,
		Description:   in.Description,
		ExpiresAt:     in.ExpiresAt,
		UsageLimit:    in.UsageLimit,
		TargetSubRole: models.AdminSubRole(in.TargetSubRole),
		Grants:        in.Grants,
	})
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrForbidden):
			return handler.Forbidden(c, string(authz.DenyMissingPermission))
		case errors.Is(err, codes.ErrCodeExists):
			return handler.Conflict(c, "access code already exists")
		default:
			log.Error().Err(err).Msg("failed to issue access code")
			return handler.Fail(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(code)
}

// List returns all codes, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	all, err := s.codes.List(c.UserContext(), authz.CurrentIdentity(c))
	if err != nil {
		if errors.Is(err, codes.ErrForbidden) {
			return handler.Forbidden(c, string(authz.DenyMissingPermission))
		}

		log.Error().Err(err).Msg("failed to list access codes")

		return handler.Fail(c, err)
	}

	return c.JSON(all)
}

// Get returns one code by id.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	code, err := s.codes.Get(c.UserContext(), authz.CurrentIdentity(c), id)
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrForbidden):
			return handler.Forbidden(c, string(authz.DenyMissingPermission))
		case errors.Is(err, codes.ErrCodeNotFound):
			return handler.NotFound(c)
		default:
			log.Error().Err(err).Msg("failed to load access code")
			return handler.Fail(c, err)
		}
	}

	return c.JSON(code)
}

// Validate reports whether a code currently admits registration, without
// consuming a use. Unknown codes answer 404.
func (s *Service) Validate(c *fiber.Ctx) error {
	valid, state, err := s.codes.Validate(c.UserContext(), c.Params("code"))
	if err != nil {
		if errors.Is(err, codes.ErrCodeNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to validate access code")

		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"valid": valid, "state": string(state)})
}

// Deactivate permanently removes a code from use.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	if err := s.codes.Deactivate(c.UserContext(), authz.CurrentIdentity(c), id); err != nil {
		switch {
		case errors.Is(err, codes.ErrForbidden):
			return handler.Forbidden(c, string(authz.DenyMissingPermission))
		case errors.Is(err, codes.ErrCodeNotFound):
			return handler.NotFound(c)
		default:
			log.Error().Err(err).Msg("failed to deactivate access code")
			return handler.Fail(c, err)
		}
	}

	return c.JSON(fiber.Map{"deactivated": true})
}

// Retire hard-deletes a code record. Super-administrators only.
func (s *Service) Retire(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	if err := s.codes.Retire(c.UserContext(), authz.CurrentIdentity(c), id); err != nil {
		switch {
		case errors.Is(err, codes.ErrForbidden):
			return handler.Forbidden(c, string(authz.DenyMissingPermission))
		case errors.Is(err, codes.ErrCodeNotFound):
			return handler.NotFound(c)
		default:
			log.Error().Err(err).Msg("failed to retire access code")
			return handler.Fail(c, err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
