package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrNoOrganization is returned when an operation that requires an
	// organization context is invoked without one. The auth boundary is
	// expected to prevent this; it is a precondition, not an internal fault.
	ErrNoOrganization = New("NO_ORGANIZATION", http.StatusPreconditionFailed, "no organization context")

	// ErrDuplicateCheckIn guards the one-record-per-(event,student) invariant
	// at the boundary so analytics can assume deduplicated input.
	ErrDuplicateCheckIn = New("DUPLICATE_CHECKIN", http.StatusConflict, "student already checked in for this event")

	// ErrAmbiguousTimestamp flags event clocks that cannot be represented in
	// the configured timezone (DST gaps). Data quality issue, never computed
	// around silently.
	ErrAmbiguousTimestamp = New("AMBIGUOUS_TIMESTAMP", http.StatusUnprocessableEntity, "timestamp cannot be normalised to the organization timezone")

	ErrInactiveEvent  = New("EVENT_INACTIVE", http.StatusConflict, "event is not accepting check-ins")
	ErrNoOngoingEvent = New("NO_ONGOING_EVENT", http.StatusNotFound, "no ongoing event for this organization")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
