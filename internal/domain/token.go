package domain

import "time"

// SessionClaims is the fixed payload carried by an access token. Role is a
// snapshot taken at mint time; a later role change is not reflected until
// the session is refreshed.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// IsExpired checks if the claims are past their expiry.
func (c SessionClaims) IsExpired() bool {
	return time.Now().Unix() > c.Exp
}

// RefreshToken represents a persisted refresh token. Only the SHA-256 hash
// of the token string is stored.
type RefreshToken struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	TokenHash  string    `json:"-" db:"token_hash"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	DeviceInfo *string   `json:"device_info" db:"device_info"`
	IPAddress  *string   `json:"ip_address" db:"ip_address"`
}
