// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed or missing fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock is returned when an outbound movement exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateKey is returned on username or product code collisions.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnauthorized is returned when there is no active session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the session role is not permitted.
	ErrForbidden = errors.New("forbidden")
)

// Invalid wraps ErrInvalidInput with a user-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Duplicate wraps ErrDuplicateKey with a user-facing message.
func Duplicate(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDuplicateKey, fmt.Sprintf(format, args...))
}

// HTTPError is the transport view of a domain error.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// MapError maps a domain error to an HTTP status and stable code. Unknown
// errors become a generic 500 so store internals never reach the client.
func MapError(err error) *HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return &HTTPError{http.StatusUnprocessableEntity, err.Error(), "INVALID_INPUT"}
	case errors.Is(err, ErrInsufficientStock):
		return &HTTPError{http.StatusConflict, "Not enough stock", "INSUFFICIENT_STOCK"}
	case errors.Is(err, ErrDuplicateKey):
		return &HTTPError{http.StatusConflict, err.Error(), "DUPLICATE_KEY"}
	case errors.Is(err, ErrNotFound):
		return &HTTPError{http.StatusNotFound, err.Error(), "NOT_FOUND"}
	case errors.Is(err, ErrUnauthorized):
		return &HTTPError{http.StatusUnauthorized, "Please login first", "UNAUTHORIZED"}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{http.StatusForbidden, "You don't have permission to access that page", "FORBIDDEN"}
	default:
		return &HTTPError{http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR"}
	}
}

// IsUserCorrectable reports whether err should be shown back on the
// originating form rather than treated as a request failure.
func IsUserCorrectable(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicateKey)
}
