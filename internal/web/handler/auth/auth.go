// Package auth provides the /auth endpoints: registration, login, and the
// current-identity probe.
package auth

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/accesscode"
	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/identity"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for authentication routes.
	Path = "/auth"
)

// Service is the auth handler service.
type Service struct {
	cfg        *config.Config
	db         *gorm.DB
	identities *identity.Service
	authz      *authz.Service
	validator  *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, identities *identity.Service, authService *authz.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.identities = identities
	s.authz = authService
	s.validator = validator.New()

	app.Post(Path+"/register", s.Register)
	app.Post(Path+"/register-admin", s.RegisterAdmin)
	app.Post(Path+"/login", s.Login)
	app.Get(Path+"/me",
		authz.RequireAuth(authService),
		s.Me,
	)
}

// Register creates a job-seeker or employer account.
func (s *Service) Register(c *fiber.Ctx) error {
	var in struct {
		Name     string `json:"name"     validate:"required,min=2,max=100"`
		Email    string `json:"email"    validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		Role     string `json:"role"     validate:"required,oneof=job-seeker employer"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	user, err := s.identities.RegisterSelf(c.UserContext(), in.Name, in.Email, in.Password, models.Role(in.Role))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailExists):
			return handler.Conflict(c, "email already registered")
		case errors.Is(err, identity.ErrInvalidRole):
			return handler.Validation(c, err.Error())
		default:
			log.Error().Err(err).Msg("self registration failed")
			return handler.Fail(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// RegisterAdmin creates an administrator account gated by an access code.
func (s *Service) RegisterAdmin(c *fiber.Ctx) error {
	var in struct {
		Name       string `json:"name"       validate:"required,min=2,max=100"`
		Email      string `json:"email"      validate:"required,email,max=255"`
		Password   string `json:"password"   validate:"required,min=8,max=128"`
		AccessCode string `json:"accessCode" validate:"required"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	user, err := s.identities.RegisterAdministrator(c.UserContext(), in.Name, in.Email, in.Password, in.AccessCode)
	if err != nil {
		switch {
		case errors.Is(err, accesscode.ErrInvalidCode):
			// registration-time validation failure, never a 500
			return handler.Validation(c, "access code is not valid")
		case errors.Is(err, identity.ErrEmailExists):
			return handler.Conflict(c, "email already registered")
		default:
			log.Error().Err(err).Msg("administrator registration failed")
			return handler.Fail(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login authenticates and issues a bearer token. Unknown email and wrong
// password answer with the identical body and status.
func (s *Service) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	user, token, err := s.identities.Authenticate(c.UserContext(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "invalid credentials"})
		}

		log.Error().Err(err).Msg("authentication failed")

		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Me returns the identity resolved from the bearer token.
func (s *Service) Me(c *fiber.Ctx) error {
	return c.JSON(authz.CurrentIdentity(c))
}
