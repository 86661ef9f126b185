package platform

import "fmt"

// ErrorCategory distinguishes platform failures the gateway handles
// differently: auth and scope failures map to permission errors, rate limits
// propagate, and transient failures must never produce local state.
type ErrorCategory string

const (
	CategoryAuth        ErrorCategory = "auth"
	CategoryScope       ErrorCategory = "scope"
	CategoryRateLimited ErrorCategory = "rate_limited"
	CategoryNotFound    ErrorCategory = "not_found"
	CategoryTransient   ErrorCategory = "transient"
	CategoryInvalid     ErrorCategory = "invalid"
)

// APIError is a categorised failure from the platform API.
type APIError struct {
	StatusCode int
	Category   ErrorCategory
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("platform api: %s (%d %s)", e.Message, e.StatusCode, e.Category)
	}
	return fmt.Sprintf("platform api: %s (%s)", e.Message, e.Category)
}

func (e *APIError) Unwrap() error { return e.Err }
