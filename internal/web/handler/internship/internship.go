// Package internship exposes the /internships endpoints. Browsing is public;
// mutation follows the same owner-or-permission gating as job postings, with
// manage-internships as the governing permission.
package internship

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	applicationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/application"
	internshipctl "github.com/CareerDesk/CareerDesk/internal/db/controller/internship"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for internship routes.
	Path = "/internships"
)

// Service is the internship handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path, s.List)
	app.Get(Path+"/:id", s.Get)

	app.Post(Path, authz.RequireAuth(authService), s.Create)
	app.Put(Path+"/:id", authz.RequireAuth(authService), s.Update)
	app.Delete(Path+"/:id", authz.RequireAuth(authService), s.Delete)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}

type postingInput struct {
	Title          string             `json:"title"          validate:"required,min=2,max=255"`
	Company        string             `json:"company"        validate:"required,min=2,max=255"`
	Description    string             `json:"description"    validate:"max=5000"`
	Location       string             `json:"location"       validate:"max=255"`
	DurationMonths uint               `json:"durationMonths" validate:"required,min=1,max=36"`
	Stipend        uint               `json:"stipend"`
	Skills         handler.StringList `json:"skills"`
	Open           *bool              `json:"open"`
}

// List returns postings matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize, offset := handler.Paginate(c)

	db, cancel := s.dbCtx(c)
	defer cancel()

	internships, total, err := internshipctl.List(db, internshipctl.Filter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		OpenOnly: !c.QueryBool("includeClosed", false),
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list internships")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"items":    internships,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

// Get returns one posting.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	internship, err := internshipctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, internshipctl.ErrInternshipNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load internship")

		return handler.Fail(c, err)
	}

	return c.JSON(internship)
}

func mayPost(identity *models.User) bool {
	if identity == nil {
		return false
	}

	if identity.Role == models.RoleEmployer {
		return true
	}

	return authz.Capability(identity, models.PermManageInternships)
}

// Create stores a new posting owned by the caller.
func (s *Service) Create(c *fiber.Ctx) error {
	identity := authz.CurrentIdentity(c)

	if !mayPost(identity) {
		return handler.Forbidden(c, string(authz.DenyWrongRole))
	}

	var in postingInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	internship := &models.Internship{
		Title:          in.Title,
		Company:        in.Company,
		Description:    in.Description,
		Location:       in.Location,
		DurationMonths: in.DurationMonths,
		Stipend:        in.Stipend,
		Skills:         in.Skills.Join(),
		PostedByID:     identity.ID,
		Open:           true,
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := internshipctl.Create(db, internship); err != nil {
		log.Error().Err(err).Msg("failed to create internship")
		return handler.Fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(internship)
}

// Update modifies a posting. Allowed for the owner or manage-internships
// holders.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	internship, err := internshipctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, internshipctl.ErrInternshipNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load internship")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, internship.PostedByID, models.PermManageInternships); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	var in postingInput
	if err = c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	internship.Title = in.Title
	internship.Company = in.Company
	internship.Description = in.Description
	internship.Location = in.Location
	internship.DurationMonths = in.DurationMonths
	internship.Stipend = in.Stipend
	internship.Skills = in.Skills.Join()

	if in.Open != nil {
		internship.Open = *in.Open
	}

	if err = internshipctl.Update(db, internship); err != nil {
		log.Error().Err(err).Msg("failed to update internship")
		return handler.Fail(c, err)
	}

	return c.JSON(internship)
}

// Delete removes a posting and its applications.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	internship, err := internshipctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, internshipctl.ErrInternshipNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load internship")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, internship.PostedByID, models.PermManageInternships); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if errDel := applicationctl.DeleteByTarget(tx, models.TargetInternship, id); errDel != nil {
			return errDel
		}

		return internshipctl.Delete(tx, id)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete internship")
		return handler.Fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
