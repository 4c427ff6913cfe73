// Package admin exposes the /admin endpoints: user administration behind
// manage-users, the analytics snapshot behind view-analytics, and the
// application settings behind manage-settings.
package admin

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for admin routes.
	Path = "/admin"
)

// Service is the admin handler service.
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

	users := authz.RequirePermission(authService, models.PermManageUsers)

	app.Get(Path+"/users", users, s.ListUsers)
	app.Get(Path+"/users/:id", users, s.GetUser)
	app.Put(Path+"/users/:id", users, s.UpdateUser)
	app.Delete(Path+"/users/:id", users, s.DeleteUser)

	app.Get(Path+"/analytics",
		authz.RequirePermission(authService, models.PermViewAnalytics), s.Analytics)

	settings := authz.RequirePermission(authService, models.PermManageSettings)

	app.Get(Path+"/settings", settings, s.ListSettings)
	app.Get(Path+"/settings/:name", settings, s.GetSetting)
	app.Put(Path+"/settings/:name", settings, s.SetSetting)
	app.Delete(Path+"/settings/:name", settings, s.DeleteSetting)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}
