package accesscode

import "errors"

var (
	// ErrForbidden is returned when the acting identity may not perform the
	// requested code operation.
	ErrForbidden = errors.New("not allowed to manage access codes")

	// ErrCodeExists is returned when issuing a code whose string already exists.
	ErrCodeExists = errors.New("access code already exists")

	// ErrCodeNotFound is returned when no code matches the given string or id.
	ErrCodeNotFound = errors.New("access code not found")

	// ErrInvalidCode is returned by Consume when the validity predicate no
	// longer holds: the code is deactivated, exhausted, or expired.
	ErrInvalidCode = errors.New("access code is not usable")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
