package identity

import "errors"

var (
	// ErrEmailExists is returned when registering with an email that is
	// already taken.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Authenticate for both an unknown
	// email and a wrong password. The two cases are deliberately
	// indistinguishable to resist user enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRole is returned when self-registration names a role other
	// than job-seeker or employer.
	ErrInvalidRole = errors.New("role must be job-seeker or employer")
)
