// Package profile exposes the /profile endpoints: viewing and editing the
// caller's own profile, changing the password, and uploading the avatar,
// resume, and company logo to the asset store.
package profile

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/assets"
	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	userctl "github.com/CareerDesk/CareerDesk/internal/db/controller/user"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

const (
	// Path is the base path for profile routes.
	Path = "/profile"

	// maxUploadBytes caps a single uploaded file.
	maxUploadBytes = 10 << 20

	// placeholderAsset is stored when the asset store is unavailable, so the
	// profile flow degrades instead of failing.
	placeholderAsset = "/static/placeholder.png"
)

// Service is the profile handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	store     assets.Store
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. The asset store may be nil; uploads then record the
// placeholder reference.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service, store assets.Store) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.store = store
	s.validator = validator.New()

	gate := authz.RequireAuth(authService)

	app.Get(Path, gate, s.Get)
	app.Put(Path, gate, s.Update)
	app.Put(Path+"/password", gate, s.ChangePassword)
	app.Post(Path+"/avatar", gate, s.UploadAvatar)
	app.Post(Path+"/resume", authz.RequireRole(authService, models.RoleJobSeeker), s.UploadResume)
	app.Post(Path+"/company-logo", authz.RequireRole(authService, models.RoleEmployer), s.UploadLogo)
}

func (s *Service) dbCtx(c *fiber.Ctx) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.DB)
	return s.db.WithContext(ctx), cancel
}

// Get returns the caller's profile.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(authz.CurrentIdentity(c))
}

// Update edits the caller's profile fields. Role, permissions, and email are
// not editable here; email is the identity key and the rest is admin-managed.
func (s *Service) Update(c *fiber.Ctx) error {
	var in struct {
		Name        string             `json:"name"        validate:"required,min=2,max=100"`
		Headline    string             `json:"headline"    validate:"max=255"`
		Bio         string             `json:"bio"         validate:"max=2000"`
		Skills      handler.StringList `json:"skills"`
		CompanyName string             `json:"companyName" validate:"max=255"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	identity := authz.CurrentIdentity(c)
	identity.Name = in.Name
	identity.Headline = in.Headline
	identity.Bio = in.Bio
	identity.Skills = in.Skills.Join()

	if identity.Role == models.RoleEmployer {
		identity.CompanyName = in.CompanyName
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := userctl.Update(db, identity); err != nil {
		log.Error().Err(err).Msg("failed to update profile")
		return handler.Fail(c, err)
	}

	return c.JSON(identity)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Validation(c, err.Error())
	}

	identity := authz.CurrentIdentity(c)

	if !identity.VerifyPassword(in.CurrentPassword) {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "invalid credentials"})
	}

	identity.Password = models.HashPassword(in.NewPassword)

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := userctl.Update(db, identity); err != nil {
		log.Error().Err(err).Msg("failed to change password")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"changed": true})
}

// readUpload pulls the "file" form field into memory, capped.
func readUpload(c *fiber.Ctx) ([]byte, *multipart.FileHeader, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("missing file field")
	}

	if fileHeader.Size > maxUploadBytes {
		return nil, nil, errors.New("file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, nil, err
	}

	return data, fileHeader, nil
}

// storeUpload writes the file to the asset store. When the store is down or
// unconfigured the placeholder reference is returned instead, so the profile
// keeps working without the collaborator.
func (s *Service) storeUpload(c *fiber.Ctx, folder string) (string, error) {
	data, fileHeader, err := readUpload(c)
	if err != nil {
		return "", err
	}

	if s.store == nil {
		return placeholderAsset, nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeouts.Collaborator)
	defer cancel()

	asset, err := s.store.Upload(ctx, data, folder, fileHeader.Header.Get(fiber.HeaderContentType))
	if err != nil {
		log.Warn().Err(err).Str("folder", folder).
			Msg("asset store unavailable, storing placeholder reference")
		return placeholderAsset, nil
	}

	return asset.URL, nil
}

func (s *Service) saveURL(c *fiber.Ctx, folder string, assign func(*models.User, string)) error {
	url, err := s.storeUpload(c, folder)
	if err != nil {
		return handler.Validation(c, err.Error())
	}

	identity := authz.CurrentIdentity(c)
	assign(identity, url)

	db, cancel := s.dbCtx(c)
	defer cancel()

	if err = userctl.Update(db, identity); err != nil {
		log.Error().Err(err).Msg("failed to store asset reference")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{"url": url})
}

// UploadAvatar stores a profile image.
func (s *Service) UploadAvatar(c *fiber.Ctx) error {
	return s.saveURL(c, "avatars", func(u *models.User, url string) { u.AvatarURL = url })
}

// UploadResume stores a resume for a job seeker.
func (s *Service) UploadResume(c *fiber.Ctx) error {
	return s.saveURL(c, "resumes", func(u *models.User, url string) { u.ResumeURL = url })
}

// UploadLogo stores a company logo for an employer.
func (s *Service) UploadLogo(c *fiber.Ctx) error {
	return s.saveURL(c, "logos", func(u *models.User, url string) { u.CompanyLogoURL = url })
}
