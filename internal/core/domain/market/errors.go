package market

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the normalized form of every failure the price client can
// surface. Cache failures never become APIErrors; they are absorbed below
// this layer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market api error (status %d): %s", e.StatusCode, e.Message)
}

// NewRemoteError wraps a non-2xx upstream response.
func NewRemoteError(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: message}
}

// NewTimeoutError reports an aborted or timed-out upstream call.
func NewTimeoutError(message string) *APIError {
	return &APIError{StatusCode: http.StatusRequestTimeout, Message: message}
}

// NewTransportError reports any other transport or decoding failure.
func NewTransportError(message string) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Message: message}
}

var (
	// ErrNoTransport means the client was constructed without any way to
	// reach the pricing service. No network attempt is made.
	ErrNoTransport = &APIError{StatusCode: http.StatusServiceUnavailable, Message: "no price source transport configured"}

	// ErrTooManyItems is raised before any network call when a batch
	// exceeds the per-request ceiling.
	ErrTooManyItems = errors.New("too many items for a single price request")

	// ErrTargetNotFound means the requested dye does not exist in the catalog.
	ErrTargetNotFound = errors.New("target dye not found in catalog")
)

// IsTimeout reports whether err is the normalized timeout error.
func IsTimeout(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusRequestTimeout
}
