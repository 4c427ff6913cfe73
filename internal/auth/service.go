package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// Service resolves bearer credentials to identities and answers
// authorization questions against current stored state.
type Service struct {
	db        *gorm.DB
	codec     *TokenCodec
	dbTimeout time.Duration
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, codec *TokenCodec, dbTimeout time.Duration) *Service {
	return &Service{db: db, codec: codec, dbTimeout: dbTimeout}
}

// Codec exposes the bearer-credential codec, used at login to issue tokens.
func (s *Service) Codec() *TokenCodec {
	return s.codec
}

// ResolveBearer verifies a bearer token and loads the identity it names.
// The permission flags come from storage, not from the token, so permission
// edits and role demotions apply to already-issued tokens.
func (s *Service) ResolveBearer(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	var identity models.User

	result := s.db.WithContext(ctx).First(&identity, claims.IdentityID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}

		return nil, result.Error
	}

	return &identity, nil
}
