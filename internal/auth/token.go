package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// Claims is the payload of a bearer credential: just enough to re-resolve
// the identity, never the permission set (flags are re-read from storage on
// every protected request so revocations take effect immediately).
type Claims struct {
	IdentityID   uint64              `json:"uid"`
	Role         models.Role         `json:"role"`
	AdminSubRole models.AdminSubRole `json:"subRole,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies time-boxed bearer credentials (HS256).
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec with the given signing secret and token TTL.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Sign issues a bearer token for the identity, valid for the codec TTL.
func (tc *TokenCodec) Sign(identity *models.User) (string, error) {
	now := time.Now()

	claims := Claims{
		IdentityID:   identity.ID,
		Role:         identity.Role,
		AdminSubRole: identity.AdminSubRole,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify parses and validates a bearer token, returning its claims.
// Fails with ErrTokenExpired after the TTL elapses and ErrTokenInvalid for
// anything else (bad signature, malformed, wrong algorithm).
func (tc *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := new(Claims)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}

		return tc.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.IdentityID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
