package handler

const (
	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// DefaultPageSize for paginated list endpoints.
	DefaultPageSize = 25

	// MaxPageSize callers may request.
	MaxPageSize = 100
)
