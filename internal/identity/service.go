// Package identity creates accounts and issues bearer credentials. It ties
// the authorization gate and the access-code issuer together: self-service
// registration for job seekers and employers, code-gated registration for
// administrators, and enumeration-resistant authentication.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/accesscode"
	"github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// Mailer dispatches outbound mail. Delivery is fire-and-forget: a failed
// send never rolls back the state change that triggered it.
type Mailer interface {
	Send(to, subject, body string)
}

// Service provides registration and authentication.
type Service struct {
	db        *gorm.DB
	codes     *accesscode.Service
	codec     *auth.TokenCodec
	mail      Mailer
	dbTimeout time.Duration
}

// NewService creates a new identity service.
func NewService(
	db *gorm.DB,
	codes *accesscode.Service,
	codec *auth.TokenCodec,
	mail Mailer,
	dbTimeout time.Duration,
) *Service {
	return &Service{db: db, codes: codes, codec: codec, mail: mail, dbTimeout: dbTimeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.dbTimeout)
}

// RegisterSelf creates a job-seeker or employer account. The administrator
// role is not self-service; it requires an access code.
func (s *Service) RegisterSelf(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if role != models.RoleJobSeeker && role != models.RoleEmployer {
		return nil, ErrInvalidRole
	}

	email = models.NormalizeEmail(email)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkEmailFree(ctx, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: models.HashPassword(password),
		Name:     name,
		Role:     role,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if duplicateKey(err) {
			// Lost a race past checkEmailFree; the unique index caught it.
			return nil, ErrEmailExists
		}

		return nil, err
	}

	s.welcome(ctx, user)

	return user, nil
}

// RegisterAdministrator creates an administrator account gated by an access
// code. The sub-role and permission flags are copied verbatim from the code.
// Identity creation and code consumption run in one transaction so that a
// consume race rolls the identity back instead of leaving an administrator
// whose code was never decremented; the losing registrant observes
// ErrInvalidCode.
func (s *Service) RegisterAdministrator(ctx context.Context, name, email, password, codeString string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	code, err := s.codes.Lookup(ctx, codeString)
	if err != nil {
		if errors.Is(err, accesscode.ErrCodeNotFound) {
			return nil, accesscode.ErrInvalidCode
		}

		return nil, err
	}

	if !code.Usable(time.Now()) {
		return nil, accesscode.ErrInvalidCode
	}

	email = models.NormalizeEmail(email)

	if err = s.checkEmailFree(ctx, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Password:     models.HashPassword(password),
		Name:         name,
		Role:         models.RoleAdministrator,
		AdminSubRole: code.TargetSubRole,
		Permissions:  code.Grants,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(user).Error; errCreate != nil {
			if duplicateKey(errCreate) {
				return ErrEmailExists
			}

			return errCreate
		}

		if errConsume := accesscode.ConsumeWithin(tx, codeString); errConsume != nil {
			// Lost the race between Validate and Consume. The transaction
			// rollback removes the just-created identity again.
			log.Warn().Str("code", codeString).Str("email", email).
				Msg("access code was exhausted between validate and consume, rolling back registration")

			return errConsume
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.welcome(ctx, user)

	return user, nil
}

// Authenticate checks the credentials and issues a signed, time-boxed bearer
// token. Unknown email and wrong password return the identical
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user models.User

	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}

		return nil, "", result.Error
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.codec.Sign(&user)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// duplicateKey reports whether an insert was rejected by a unique index.
// Covers gorm's translated sentinel plus the raw MySQL and SQLite messages
// for connections opened without error translation.
func duplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// checkEmailFree returns ErrEmailExists when the normalized email is taken.
func (s *Service) checkEmailFree(ctx context.Context, email string) error {
	var existing models.User

	result := s.db.WithContext(ctx).Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return ErrEmailExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return nil
}

// welcome records the in-app welcome notification and dispatches the welcome
// mail. Neither may fail the registration that triggered them.
func (s *Service) welcome(ctx context.Context, user *models.User) {
	notification := &models.Notification{
		RecipientID: user.ID,
		Kind:        models.NotifyWelcome,
		Message:     fmt.Sprintf("Welcome to CareerDesk, %s!", user.Name),
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to store welcome notification")
	}

	if s.mail != nil {
		s.mail.Send(user.Email, "Welcome to CareerDesk",
			fmt.Sprintf("Hi %s,\n\nyour CareerDesk account is ready.\n", user.Name))
	}
}
