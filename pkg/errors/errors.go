package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
	Err     error                  `json:"-"`
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

// Is matches errors by code so clones and meta-carrying copies of a sentinel
// still satisfy errors.Is against the original.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
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

// Authentication errors. Never retried automatically.
var (
	ErrNotAuthenticated         = New("NOT_AUTHENTICATED", http.StatusUnauthorized, "authentication required")
	ErrNotAuthenticatedExternal = New("NOT_AUTHENTICATED_EXTERNAL", http.StatusUnauthorized, "no linked streaming platform account")
)

// Authorization errors. Permanent for the actor/action pair and surfaced
// verbatim to the UI layer.
var (
	ErrSiteModeratorsReadOnly = New("SITE_MODERATORS_READ_ONLY", http.StatusForbidden, "site moderators cannot perform platform moderation actions")
	ErrInsufficientScopes     = New("INSUFFICIENT_SCOPES", http.StatusForbidden, "missing required platform scopes")
	ErrNotBroadcaster         = New("NOT_BROADCASTER", http.StatusForbidden, "only broadcasters or channel moderators may perform this action")
	ErrOwnerProtected         = New("OWNER_PROTECTED", http.StatusForbidden, "the channel owner cannot be removed or demoted")
	ErrForbidden              = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized           = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
)

// Validation errors. Fixable by correcting input.
var (
	ErrReasonRequired = New("VALIDATION_REASON_REQUIRED", http.StatusBadRequest, "a non-empty reason is required")
	ErrMissingFields  = New("VALIDATION_MISSING_FIELDS", http.StatusBadRequest, "broadcaster_id and user_id are required")
	ErrDurationRange  = New("VALIDATION_DURATION_RANGE", http.StatusBadRequest, "duration_seconds must be between 1 and 1209600")
	ErrValidation     = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
)

// State, rate-limit and upstream errors.
var (
	ErrInvalidState      = New("INVALID_STATE", http.StatusConflict, "resource is not in a state that allows this action")
	ErrRateLimitExceeded = New("RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests, "rate limit exceeded")
	ErrUpstream          = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "streaming platform request failed")
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
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

// WithMeta returns a copy of the error carrying additional structured context,
// such as the rate-limit window reset time.
func WithMeta(err *Error, meta map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Meta = meta
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
