package domain

import "time"

// Role is the authorization level assigned to a user. It is set by the
// server on creation and changed only through the admin mutation path.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User represents an Immochat account. PasswordHash is empty for accounts
// that have only ever signed in through an OAuth provider.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	Phone        *string    `json:"phone" db:"phone"`
	Company      *string    `json:"company" db:"company"`
	Bio          *string    `json:"bio" db:"bio"`
	ImageURL     *string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

// HasPassword reports whether the account can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// ExternalIdentity links an OAuth provider account to a local user.
// The pair (Provider, ProviderAccountID) is unique across the system.
type ExternalIdentity struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"`
	Provider          string    `json:"provider" db:"provider"`
	ProviderAccountID string    `json:"provider_account_id" db:"provider_account_id"`
	AccessToken       *string   `json:"-" db:"access_token"`
	RefreshToken      *string   `json:"-" db:"refresh_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// OAuthProfile is the verified profile obtained from a provider after the
// authorization-code exchange.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	ImageURL          string
	AccessToken       string
	RefreshToken      string
}
