package domain

import "errors"

// Authentication errors
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrForbidden          = errors.New("forbidden")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMisconfigured      = errors.New("server misconfigured")
)

// Resource errors
var (
	ErrValidationFailed  = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")
)

// ErrUpstreamDegraded marks a failed call to an auxiliary service.
// It is absorbed by the write pipeline and never reaches the caller.
var ErrUpstreamDegraded = errors.New("upstream service unavailable")

// ValidationError carries the first failing field of a candidate record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
