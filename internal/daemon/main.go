// Package daemon wires the application together: database, migrations, seed
// data, collaborators, and the web service.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/accesscode"
	"github.com/CareerDesk/CareerDesk/internal/assets"
	"github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/dsn"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/identity"
	"github.com/CareerDesk/CareerDesk/internal/mailer"
	"github.com/CareerDesk/CareerDesk/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.AccessCode{},
		&models.Job{},
		&models.Internship{},
		&models.GovernmentJob{},
		&models.Application{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	codec := auth.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	codes := accesscode.NewService(db, cfg.Timeouts.DB)

	var mail identity.Mailer
	if cfg.Mail.Enabled {
		mail = mailer.New(cfg.Mail, cfg.Timeouts.Collaborator)
	}

	identities := identity.NewService(db, codes, codec, mail, cfg.Timeouts.DB)

	store, err := assets.New(cfg.Assets)
	if err != nil {
		log.Warn().Err(err).Msg("asset store misconfigured, uploads will degrade to placeholders")
	}

	collaborators := web.Collaborators{
		Codes:      codes,
		Identities: identities,
		Mail:       mail,
	}

	// a typed nil inside the interface would dodge the nil checks downstream
	if store != nil {
		collaborators.Store = store
	}

	return &Daemon{
		webService: web.New(cfg, db, collaborators),
		cfg:        cfg,
	}
}
