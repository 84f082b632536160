package app

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned before any network call when the client has no
// credential configured.
var ErrNoAPIKey = errors.New("jules api key not configured")

// APIError is a non-2xx response from the service, carrying the server's
// error envelope when one was present.
type APIError struct {
	HTTPStatus int    // HTTP status code of the response
	Code       int    // envelope "code", 0 when absent
	Status     string // envelope "status", e.g. "NOT_FOUND"
	Message    string // server message, or a generic fallback
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("jules api: %s (%d): %s", e.Status, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("jules api: %d: %s", e.HTTPStatus, e.Message)
}
