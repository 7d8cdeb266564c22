package browser

import "errors"

// Sentinel errors for browser sessions.
var (
	ErrBrowserUnavailable = errors.New("browser unavailable")
	ErrNoURL              = errors.New("page url is required")
)
