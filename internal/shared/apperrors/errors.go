// Package apperrors holds the error kinds shared by every module. Services wrap
// one of these sentinels with context (fmt.Errorf("%w: ...")) and the HTTP layer
// maps them to status codes with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: event, session, seat or booking does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the request collides with current state, e.g. a seat that is
	// already booked or an exhausted ticket type. Callers may retry after
	// re-reading state.
	ErrConflict = errors.New("conflict")

	// ErrForbidden: the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConfiguration: malformed input the caller has to fix, such as a venue
	// without a seating layout or an invalid recurrence rule.
	ErrConfiguration = errors.New("configuration error")
)

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden with a formatted message.
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Configuration wraps ErrConfiguration with a formatted message.
func Configuration(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is one of the caller-facing kinds.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConfiguration)
}
