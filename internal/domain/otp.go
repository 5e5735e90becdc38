package domain

import "time"

// OTPPurpose scopes a one-time code to the action it authorizes.
type OTPPurpose string

const (
	OTPPurposePasswordReset     OTPPurpose = "PASSWORD_RESET"
	OTPPurposePasswordChange    OTPPurpose = "PASSWORD_CHANGE"
	OTPPurposeEmailVerification OTPPurpose = "EMAIL_VERIFICATION"
)

// Valid reports whether p is a known purpose.
func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposePasswordReset, OTPPurposePasswordChange, OTPPurposeEmailVerification:
		return true
	}
	return false
}

// OneTimeCode is a short-lived 6-digit credential proving control of an
// email address for a specific purpose. At most one active (unused,
// unexpired) code exists per (email, purpose); issuing a new one
// invalidates the previous code in the same transaction.
type OneTimeCode struct {
	ID        string     `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Code      string     `json:"-" db:"code"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	Used      bool       `json:"used" db:"used"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
