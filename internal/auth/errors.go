package auth

import "errors"

var (
	// ErrTokenExpired is returned when a bearer token's expiry has passed.
	ErrTokenExpired = errors.New("bearer token expired")

	// ErrTokenInvalid is returned for malformed tokens, bad signatures, and
	// unexpected signing algorithms.
	ErrTokenInvalid = errors.New("bearer token invalid")

	// ErrIdentityNotFound is returned when a token verifies but its identity
	// no longer exists.
	ErrIdentityNotFound = errors.New("identity not found")
)
