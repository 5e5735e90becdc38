package utils

import (
	"regexp"
	"strings"

	"github.com/immochat/auth-service/internal/dto"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword validates a password against the policy:
// minimum 8 characters, at least one uppercase letter, one lowercase
// letter, one digit.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	hasUpper := false
	hasLower := false
	hasNumber := false

	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// ValidateSignup returns field-level errors for a signup payload. Field
// errors are safe to expose to the caller.
func ValidateSignup(name, email, password, confirmPassword string) []dto.FieldError {
	var errs []dto.FieldError

	if strings.TrimSpace(name) == "" {
		errs = append(errs, dto.FieldError{Field: "name", Message: "name is required"})
	}
	if !ValidateEmail(email) {
		errs = append(errs, dto.FieldError{Field: "email", Message: "invalid email format"})
	}
	if !ValidatePassword(password) {
		errs = append(errs, dto.FieldError{
			Field:   "password",
			Message: "password must be at least 8 characters long and contain uppercase, lowercase, and number",
		})
	}
	if password != confirmPassword {
		errs = append(errs, dto.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}

	return errs
}

// ValidateNewPassword returns field-level errors for a password change/set
// payload.
func ValidateNewPassword(password, confirmPassword string) []dto.FieldError {
	var errs []dto.FieldError

	if !ValidatePassword(password) {
		errs = append(errs, dto.FieldError{
			Field:   "new_password",
			Message: "password must be at least 8 characters long and contain uppercase, lowercase, and number",
		})
	}
	if password != confirmPassword {
		errs = append(errs, dto.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}

	return errs
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
