// Package application exposes the /applications endpoints: job seekers apply
// to postings and track their applications, posting owners review them and
// move them through the status pipeline.
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	applicationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/application"
	govctl "github.com/CareerDesk/CareerDesk/internal/db/controller/governmentjob"
	internshipctl "github.com/CareerDesk/CareerDesk/internal/db/controller/internship"
	jobctl "github.com/CareerDesk/CareerDesk/internal/db/controller/job"
	notificationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/notification"
	userctl "github.com/CareerDesk/CareerDesk/internal/db/controller/user"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/identity"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for application routes.
	Path = "/applications"
)

// errPostingClosed distinguishes a closed posting from a missing one.
var errPostingClosed = errors.New("posting is closed")

// Service is the application handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	mail      identity.Mailer
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service, mail identity.Mailer) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.mail = mail
	s.validator = validator.New()

	app.Post(Path, authz.RequireRole(authService, models.RoleJobSeeker), s.Apply)
	app.Get(Path+"/mine", authz.RequireRole(authService, models.RoleJobSeeker), s.Mine)
	app.Get(Path+"/for/:kind/:id", authz.RequireAuth(authService), s.ForPosting)
	app.Patch(Path+"/:id/status", authz.RequireAuth(authService), s.UpdateStatus)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}

// posting is the common view of the three posting collections that the
// application flow needs.
type posting struct {
	Title      string
	OwnerID    uint64
	Open       bool
	Permission string
}

// loadPosting resolves a target reference against its collection.
func loadPosting(db *gorm.DB, kind models.ApplicationTarget, id uint64) (*posting, error) {
	switch kind {
	case models.TargetJob:
		job, err := jobctl.GetByID(db, id)
		if err != nil {
			return nil, err
		}

		return &posting{Title: job.Title, OwnerID: job.PostedByID, Open: job.Open, Permission: models.PermManageJobs}, nil
	case models.TargetInternship:
		internship, err := internshipctl.GetByID(db, id)
		if err != nil {
			return nil, err
		}

		return &posting{Title: internship.Title, OwnerID: internship.PostedByID, Open: internship.Open, Permission: models.PermManageInternships}, nil
	case models.TargetGovernmentJob:
		listing, err := govctl.GetByID(db, id)
		if err != nil {
			return nil, err
		}

		return &posting{Title: listing.Title, OwnerID: listing.PostedByID, Open: listing.Open, Permission: models.PermManageJobs}, nil
	default:
		return nil, fmt.Errorf("unknown posting kind %q", kind)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, jobctl.ErrJobNotFound) ||
		errors.Is(err, internshipctl.ErrInternshipNotFound) ||
		errors.Is(err, govctl.ErrListingNotFound)
}

// Apply creates an application to an open posting. The resume reference is
// taken from the applicant's profile at application time.
func (s *Service) Apply(c *fiber.Ctx) error {
	var in struct {
		TargetKind  string `json:"targetKind"  validate:"required,oneof=job internship government-job"`
		TargetID    uint64 `json:"targetId"    validate:"required"`
		CoverLetter string `json:"coverLetter" validate:"max=5000"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	identity := authz.CurrentIdentity(c)
	kind := models.ApplicationTarget(in.TargetKind)

	db, cancel := s.dbCtx(c)
	defer cancel()

	target, err := loadPosting(db, kind, in.TargetID)
	if err != nil {
		if isNotFound(err) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load posting for application")

		return handler.Fail(c, err)
	}

	if !target.Open {
		return handler.Validation(c, errPostingClosed.Error())
	}

	application := &models.Application{
		ApplicantID: identity.ID,
		TargetKind:  kind,
		TargetID:    in.TargetID,
		CoverLetter: in.CoverLetter,
		ResumeURL:   identity.ResumeURL,
		Status:      models.StatusSubmitted,
	}

	if err = applicationctl.Create(db, application); err != nil {
		if errors.Is(err, applicationctl.ErrAlreadyApplied) {
			return handler.Conflict(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create application")

		return handler.Fail(c, err)
	}

	s.notifyOwner(db, target, identity)

	return c.Status(fiber.StatusCreated).JSON(application)
}

// notifyOwner records the in-app notification for the posting owner and sends
// the mail. Neither may fail the application that triggered them.
func (s *Service) notifyOwner(db *gorm.DB, target *posting, applicant *models.User) {
	message := fmt.Sprintf("%s applied to %q", applicant.Name, target.Title)

	err := notificationctl.Create(db, &models.Notification{
		RecipientID: target.OwnerID,
		Kind:        models.NotifyApplication,
		Message:     message,
	})
	if err != nil {
		log.Error().Err(err).Uint64("recipient_id", target.OwnerID).
			Msg("failed to store application notification")
	}

	if s.mail == nil {
		return
	}

	owner, err := userctl.GetByID(db, target.OwnerID)
	if err != nil {
		log.Warn().Err(err).Uint64("owner_id", target.OwnerID).
			Msg("skipping application mail, owner lookup failed")
		return
	}

	s.mail.Send(owner.Email, "New application on CareerDesk",
		fmt.Sprintf("Hi %s,\n\n%s.\n", owner.Name, message))
}

// Mine returns the caller's applications, newest first.
func (s *Service) Mine(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	applications, err := applicationctl.ListByApplicant(db, authz.CurrentIdentity(c).ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list applications")
		return handler.Fail(c, err)
	}

	return c.JSON(applications)
}

// ForPosting returns the applications for one posting. Allowed for the
// posting owner or holders of the posting's governing permission.
func (s *Service) ForPosting(c *fiber.Ctx) error {
	kind := models.ApplicationTarget(c.Params("kind"))
	if kind != models.TargetJob && kind != models.TargetInternship && kind != models.TargetGovernmentJob {
		return handler.Validation(c, "invalid posting kind")
	}

	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	target, err := loadPosting(db, kind, id)
	if err != nil {
		if isNotFound(err) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load posting for review")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, target.OwnerID, target.Permission); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	applications, err := applicationctl.ListByTarget(db, kind, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to list applications for posting")
		return handler.Fail(c, err)
	}

	return c.JSON(applications)
}

// UpdateStatus moves an application to a new review state and notifies the
// applicant.
func (s *Service) UpdateStatus(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	var in struct {
		Status string `json:"status" validate:"required,oneof=submitted shortlisted rejected hired"`
	}

	if err = c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	application, err := applicationctl.GetByID(db, id)
	if err != nil {
		if errors.Is(err, applicationctl.ErrApplicationNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load application")

		return handler.Fail(c, err)
	}

	target, err := loadPosting(db, application.TargetKind, application.TargetID)
	if err != nil {
		if isNotFound(err) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to load posting for status change")

		return handler.Fail(c, err)
	}

	identity := authz.CurrentIdentity(c)

	if decision := authz.AuthorizeOwner(identity, target.OwnerID, target.Permission); !decision.Allowed {
		return handler.Forbidden(c, string(decision.Reason))
	}

	status := models.ApplicationStatus(in.Status)

	if err = applicationctl.UpdateStatus(db, id, status); err != nil {
		log.Error().Err(err).Msg("failed to update application status")
		return handler.Fail(c, err)
	}

	application.Status = status

	s.notifyApplicant(db, application, target)

	return c.JSON(application)
}

// notifyApplicant records the status-change notification and sends the mail.
func (s *Service) notifyApplicant(db *gorm.DB, application *models.Application, target *posting) {
	message := fmt.Sprintf("Your application to %q is now %s", target.Title, application.Status)

	err := notificationctl.Create(db, &models.Notification{
		RecipientID: application.ApplicantID,
		Kind:        models.NotifyStatusChange,
		Message:     message,
	})
	if err != nil {
		log.Error().Err(err).Uint64("recipient_id", application.ApplicantID).
			Msg("failed to store status notification")
	}

	if s.mail == nil {
		return
	}

	applicant, err := userctl.GetByID(db, application.ApplicantID)
	if err != nil {
		log.Warn().Err(err).Uint64("applicant_id", application.ApplicantID).
			Msg("skipping status mail, applicant lookup failed")
		return
	}

	s.mail.Send(applicant.Email, "Application update on CareerDesk",
		fmt.Sprintf("Hi %s,\n\n%s.\n", applicant.Name, message))
}
