// Package governmentjob exposes the /government-jobs endpoints. These
// listings are curated: browsing is public, every mutation requires the
// manage-jobs permission.
package governmentjob

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	applicationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/application"
	govctl "github.com/CareerDesk/CareerDesk/internal/db/controller/governmentjob"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for government-job routes.
	Path = "/government-jobs"
)

// Service is the government-job handler service.
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

	gate := authz.RequirePermission(authService, models.PermManageJobs)

	app.Post(Path, gate, s.Create)
	app.Put(Path+"/:id", gate, s.Update)
	app.Delete(Path+"/:id", gate, s.Delete)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}

type listingInput struct {
	Title         string    `json:"title"         validate:"required,min=2,max=255"`
	Department    string    `json:"department"    validate:"required,min=2,max=255"`
	Description   string    `json:"description"   validate:"max=5000"`
	Location      string    `json:"location"      validate:"max=255"`
	SalaryMin     uint      `json:"salaryMin"`
	SalaryMax     uint      `json:"salaryMax"     validate:"omitempty,gtefield=SalaryMin"`
	LastApplyDate time.Time `json:"lastApplyDate" validate:"required"`
	Open          *bool     `json:"open"`
}

// List returns listings matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize, offset := handler.Paginate(c)

	db, cancel := s.dbCtx(c)
	defer cancel()

	listings, total, err := govctl.List(db, govctl.Filter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		OpenOnly: !c.QueryBool("includeClosed", false),
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list government jobs")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"items":    listings,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

// Get returns one listing.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	listing, err := govctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, govctl.ErrListingNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load government job")

		return handler.Fail(c, err)
	}

	return c.JSON(listing)
}

// Create stores a new curated listing.
func (s *Service) Create(c *fiber.Ctx) error {
	var in listingInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	listing := &models.GovernmentJob{
		Title:         in.Title,
		Department:    in.Department,
		Description:   in.Description,
		Location:      in.Location,
		SalaryMin:     in.SalaryMin,
		SalaryMax:     in.SalaryMax,
		LastApplyDate: in.LastApplyDate,
		PostedByID:    authz.CurrentIdentity(c).ID,
		Open:          true,
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := govctl.Create(db, listing); err != nil {
		log.Error().Err(err).Msg("failed to create government job")
		return handler.Fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// Update modifies a listing.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	listing, err := govctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, govctl.ErrListingNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load government job")

		return handler.Fail(c, err)
	}

	var in listingInput
	if err = c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	listing.Title = in.Title
	listing.Department = in.Department
	listing.Description = in.Description
	listing.Location = in.Location
	listing.SalaryMin = in.SalaryMin
	listing.SalaryMax = in.SalaryMax
	listing.LastApplyDate = in.LastApplyDate

	if in.Open != nil {
		listing.Open = *in.Open
	}

	if err = govctl.Update(db, listing); err != nil {
		log.Error().Err(err).Msg("failed to update government job")
		return handler.Fail(c, err)
	}

	return c.JSON(listing)
}

// Delete removes a listing and its applications.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	err = db.Transaction(func(tx *gorm.DB) error {
		if errDel := applicationctl.DeleteByTarget(tx, models.TargetGovernmentJob, id); errDel != nil {
			return errDel
		}

		return govctl.Delete(tx, id)
	})
	if err != nil {
		if errors.Is(err, govctl.ErrListingNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to delete government job")

		return handler.Fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
