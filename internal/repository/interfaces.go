package repository

import (
	"context"

	"github.com/immochat/auth-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// UpsertByEmail creates the user with its server-assigned defaults, or
	// refreshes name/image of an existing row. Role and password hash of an
	// existing user are never touched.
	UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	UpdateLastLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// IdentityRepository defines methods for external identity links
type IdentityRepository interface {
	// Link is an idempotent upsert keyed on (provider, provider_account_id).
	// On conflict the provider tokens are refreshed and the existing link is
	// returned.
	Link(ctx context.Context, identity *domain.ExternalIdentity) (*domain.ExternalIdentity, error)
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.ExternalIdentity, error)
}

// OTPRepository defines methods for one-time code operations
type OTPRepository interface {
	// Replace deletes any active code for (email, purpose) and inserts the
	// new one in a single transaction.
	Replace(ctx context.Context, code *domain.OneTimeCode) error
	// Consume atomically marks the matching active code as used and returns
	// it. ErrNotFound covers missing, expired and already-used codes alike.
	Consume(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error)
	GetByID(ctx context.Context, id string) (*domain.OneTimeCode, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) error
}
