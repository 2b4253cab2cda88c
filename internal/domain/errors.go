package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrNotFound           = errors.New("resource not found")
	ErrSelfDeactivation   = errors.New("cannot deactivate own account")
	ErrNotConfigured      = errors.New("integration not configured")
)

// ValidationError describes rejected input in user-facing terms.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation builds a ValidationError for the given fields.
func NewValidation(message string, fields ...string) error {
	return &ValidationError{Message: message, Fields: fields}
}
