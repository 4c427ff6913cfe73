// Package notification exposes the /notifications endpoints for the caller's
// in-app messages.
package notification

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	notificationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/notification"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for notification routes.
	Path = "/notifications"
)

// Service is the notification handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
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

	gate := authz.RequireAuth(authService)

	app.Get(Path, gate, s.List)
	app.Patch(Path+"/:id/read", gate, s.MarkRead)
	app.Patch(Path+"/read-all", gate, s.MarkAllRead)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}

// List returns the caller's notifications, newest first. Pass unread=true to
// restrict to unread ones.
func (s *Service) List(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	notifications, err := notificationctl.ListByRecipient(db,
		authz.CurrentIdentity(c).ID, c.QueryBool("unread", false))
	if err != nil {
		log.Error().Err(err).Msg("failed to list notifications")
		return handler.Fail(c, err)
	}

	return c.JSON(notifications)
}

// MarkRead flags one of the caller's notifications as read.
func (s *Service) MarkRead(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err = notificationctl.MarkRead(db, authz.CurrentIdentity(c).ID, id); err != nil {
		if errors.Is(err, notificationctl.ErrNotificationNotFound) {
			return handler.NotFound(c)
		}

		log.Error().Err(err).Msg("failed to mark notification read")

		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"read": true})
}

// MarkAllRead flags all of the caller's unread notifications as read.
func (s *Service) MarkAllRead(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	affected, err := notificationctl.MarkAllRead(db, authz.CurrentIdentity(c).ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to mark notifications read")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"read": affected})
}
