// Package web assembles the HTTP service: the fiber app, the access log, the
// liveness and metrics endpoints, and the route handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/accesscode"
	"github.com/CareerDesk/CareerDesk/internal/assets"
	"github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/identity"
	fiberlogger "github.com/CareerDesk/CareerDesk/internal/logger/adapter/fiber"
	accesscodehandler "github.com/CareerDesk/CareerDesk/internal/web/handler/accesscode"
	adminhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/admin"
	applicationhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/application"
	authhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/auth"
	governmentjobhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/governmentjob"
	internshiphandler "github.com/CareerDesk/CareerDesk/internal/web/handler/internship"
	jobhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/job"
	notificationhandler "github.com/CareerDesk/CareerDesk/internal/web/handler/notification"
	profilehandler "github.com/CareerDesk/CareerDesk/internal/web/handler/profile"
)

// checkAlivePath is the liveness endpoint used by load balancers.
const checkAlivePath = "/checkalive"

// Collaborators bundles the outbound dependencies handed to the handlers.
// Mail and Store may be nil; the affected flows degrade instead of failing.
type Collaborators struct {
	Codes      *accesscode.Service
	Identities *identity.Service
	Mail       identity.Mailer
	Store      assets.Store
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// checkAlive reports liveness until shutdown has begun.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"alive": false})
	}

	return c.JSON(fiber.Map{"alive": true})
}

// errorHandler renders unhandled fiber errors as the JSON envelope the rest
// of the API uses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, collaborators Collaborators) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   errorHandler,
		},
	)

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAlivePath,
	}))

	authService := auth.NewService(db, auth.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL), cfg.Timeouts.DB)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	app.Get(checkAlivePath, service.checkAlive)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with permission checks)
	authhandler.Handler.Init(app, cfg, db, collaborators.Identities, authService)
	accesscodehandler.Handler.Init(app, cfg, db, collaborators.Codes, authService)
	jobhandler.Handler.Init(app, cfg, db, authService)
	internshiphandler.Handler.Init(app, cfg, db, authService)
	governmentjobhandler.Handler.Init(app, cfg, db, authService)
	applicationhandler.Handler.Init(app, cfg, db, authService, collaborators.Mail)
	profilehandler.Handler.Init(app, cfg, db, authService, collaborators.Store)
	notificationhandler.Handler.Init(app, cfg, db, authService)
	adminhandler.Handler.Init(app, cfg, db, authService)

	return service
}
