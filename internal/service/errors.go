package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/immochat/auth-service/internal/dto"
)

// Service-level errors. Handlers classify on these with errors.Is/As; the
// messages surfaced for authentication failures stay deliberately generic.
var (
	// ErrInvalidCredentials covers missing user, missing password hash and
	// password mismatch alike
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidCode covers missing, expired and already-used codes alike
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrEmailTaken is returned on signup with an existing email
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidSession is returned for any unusable session or refresh token
	ErrInvalidSession = errors.New("invalid or expired session")

	// ErrPasswordAlreadySet rejects set-password on accounts that already
	// have one
	ErrPasswordAlreadySet = errors.New("password already set, use change password")
)

// ValidationError carries field-level errors, safe to expose to the caller.
type ValidationError struct {
	Fields []dto.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError wraps field errors, returning nil when there are none.
func NewValidationError(fields []dto.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
