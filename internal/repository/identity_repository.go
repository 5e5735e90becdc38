package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/pkg/database"
)

const identityColumns = `id, user_id, provider, provider_account_id, access_token, refresh_token, created_at`

// identityRepository implements IdentityRepository interface
type identityRepository struct {
	db *database.Postgres
}

// NewIdentityRepository creates a new external identity repository
func NewIdentityRepository(db *database.Postgres) IdentityRepository {
	return &identityRepository{db: db}
}

// Link upserts an identity link keyed on the unique
// (provider, provider_account_id) pair. A concurrent first sign-in from the
// same identity lands on the conflict arm instead of failing, so the caller
// always gets back exactly one persisted link.
func (r *identityRepository) Link(ctx context.Context, identity *domain.ExternalIdentity) (*domain.ExternalIdentity, error) {
	query := fmt.Sprintf(`
		INSERT INTO external_identities (id, user_id, provider, provider_account_id, access_token, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, provider_account_id) DO UPDATE SET
			access_token = COALESCE(EXCLUDED.access_token, external_identities.access_token),
			refresh_token = COALESCE(EXCLUDED.refresh_token, external_identities.refresh_token)
		RETURNING %s
	`, identityColumns)

	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}

	stored, err := r.scanIdentity(r.db.DB.QueryRowContext(ctx, query,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderAccountID,
		identity.AccessToken,
		identity.RefreshToken,
		identity.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to link external identity: %w", err)
	}

	return stored, nil
}

// GetByProvider retrieves an identity link by provider and provider account ID
func (r *identityRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.ExternalIdentity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM external_identities
		WHERE provider = $1 AND provider_account_id = $2
	`, identityColumns)

	identity, err := r.scanIdentity(r.db.DB.QueryRowContext(ctx, query, provider, providerAccountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("external identity not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get external identity: %w", err)
	}

	return identity, nil
}

func (r *identityRepository) scanIdentity(row *sql.Row) (*domain.ExternalIdentity, error) {
	identity := &domain.ExternalIdentity{}
	var accessToken, refreshToken sql.NullString

	err := row.Scan(
		&identity.ID,
		&identity.UserID,
		&identity.Provider,
		&identity.ProviderAccountID,
		&accessToken,
		&refreshToken,
		&identity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accessToken.Valid {
		identity.AccessToken = &accessToken.String
	}
	if refreshToken.Valid {
		identity.RefreshToken = &refreshToken.String
	}

	return identity, nil
}
