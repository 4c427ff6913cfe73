// Package job exposes the /jobs endpoints. Browsing is public; creating a
// posting requires the employer role or the manage-jobs permission, and
// editing is owner-or-permission gated.
package job

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
	jobctl "github.com/CareerDesk/CareerDesk/internal/db/controller/job"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for job routes.
	Path = "/jobs"
)

// Service is the job handler service.
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

// postingInput is the request body shared by Create and Update.
type postingInput struct {
	Title       string             `json:"title"       validate:"required,min=2,max=255"`
	Company     string             `json:"company"     validate:"required,min=2,max=255"`
	Description string             `json:"description" validate:"max=5000"`
	Location    string             `json:"location"    validate:"max=255"`
	Type        string             `json:"type"        validate:"omitempty,oneof=full-time part-time contract"`
	SalaryMin   uint               `json:"salaryMin"`
	SalaryMax   uint               `json:"salaryMax"   validate:"omitempty,gtefield=SalaryMin"`
	Skills      handler.StringList `json:"skills"`
	Open        *bool              `json:"open"`
}

// List returns postings matching the query filters. Closed postings are
// hidden unless includeClosed is set.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize, offset := handler.Paginate(c)

	db, cancel := s.dbCtx(c)
	defer cancel()

	jobs, total, err := jobctl.List(db, jobctl.Filter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Type:     models.EmploymentType(c.Query("type")),
		OpenOnly: !c.QueryBool("includeClosed", false),
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list jobs")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"items":    jobs,
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

	job, err := jobctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load job")

		return handler.Fail(c, err)
	}

	return c.JSON(job)
}

// mayPost reports whether the identity may create postings: employers for
// their own company, administrators via manage-jobs.
func mayPost(identity *models.User) bool {
	if identity == nil {
		return false
	}

	if identity.Role == models.RoleEmployer {
		return true
	}

	return authz.Capability(identity, models.PermManageJobs)
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

	if in.Type == "" {
		in.Type = string(models.EmploymentFullTime)
	}

	job := &models.Job{
		Title:       in.Title,
		Company:     in.Company,
		Description: in.Description,
		Location:    in.Location,
		Type:        models.EmploymentType(in.Type),
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		Skills:      in.Skills.Join(),
		PostedByID:  identity.ID,
		Open:        true,
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := jobctl.Create(db, job); err != nil {
		log.Error().Err(err).Msg("failed to create job")
		return handler.Fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// Update modifies a posting. Allowed for the owner or manage-jobs holders.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	job, err := jobctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load job")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, job.PostedByID, models.PermManageJobs); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	var in postingInput
	if err = c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	job.Title = in.Title
	job.Company = in.Company
	job.Description = in.Description
	job.Location = in.Location
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Skills = in.Skills.Join()

	if in.Type != "" {
		job.Type = models.EmploymentType(in.Type)
	}

	if in.Open != nil {
		job.Open = *in.Open
	}

	if err = jobctl.Update(db, job); err != nil {
		log.Error().Err(err).Msg("failed to update job")
		return handler.Fail(c, err)
	}

	return c.JSON(job)
}

// Delete removes a posting and its applications. Allowed for the owner or
// manage-jobs holders.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	job, err := jobctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load job")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, job.PostedByID, models.PermManageJobs); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if errDel := applicationctl.DeleteByTarget(tx, models.TargetJob, id); errDel != nil {
			return errDel
		}

		return jobctl.Delete(tx, id)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete job")
		return handler.Fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
