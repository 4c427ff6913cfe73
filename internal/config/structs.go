package config

import (
	"time"

	"github.com/CareerDesk/CareerDesk/internal/logger"
)

// Auth holds bearer-credential settings.
type Auth struct {
	// TokenSecret signs bearer tokens (HS256). Must not be empty.
	TokenSecret string
	// TokenTTL is how long an issued bearer token stays valid.
	TokenTTL time.Duration
}

// Mail holds SMTP settings for outbound notification mail.
// Delivery is fire-and-forget: failures are logged, never propagated.
type Mail struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Assets holds settings for the S3-compatible asset store used for
// avatars, resumes, and company logos.
type Assets struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL, when set, is used to build returned file URLs instead of
	// the path-style endpoint URL.
	PublicURL string
}

// Timeouts bound outbound calls. Hitting one surfaces as a transient
// failure, distinct from a validation failure.
type Timeouts struct {
	// DB bounds a single database operation.
	DB time.Duration
	// Collaborator bounds calls to mail and asset-store collaborators.
	Collaborator time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Mail      Mail
	Assets    Assets
	Timeouts  Timeouts
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
}
