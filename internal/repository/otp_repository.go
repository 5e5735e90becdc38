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

// otpRepository implements OTPRepository interface
type otpRepository struct {
	db *database.Postgres
}

// NewOTPRepository creates a new one-time code repository
func NewOTPRepository(db *database.Postgres) OTPRepository {
	return &otpRepository{db: db}
}

// Replace deletes any active code for (email, purpose) and inserts the new
// one inside a single transaction, so there is never a window with two
// active codes for the same pair.
func (r *otpRepository) Replace(ctx context.Context, code *domain.OneTimeCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM one_time_codes WHERE email = $1 AND purpose = $2 AND used = false`,
		code.Email, code.Purpose,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate prior codes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO one_time_codes (id, email, code, purpose, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`,
		code.ID,
		code.Email,
		code.Code,
		code.Purpose,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit code replacement: %w", err)
	}

	return nil
}

// Consume marks the matching active code as used in a single conditional
// update. Two concurrent verify attempts cannot both succeed: only the call
// that flips used=false to true gets a row back. Missing, expired and
// already-used codes all come back as ErrNotFound.
func (r *otpRepository) Consume(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	query := `
		UPDATE one_time_codes
		SET used = true
		WHERE email = $1 AND code = $2 AND purpose = $3 AND used = false AND expires_at > $4
		RETURNING id, email, code, purpose, expires_at, used, created_at
	`

	otp := &domain.OneTimeCode{}
	err := r.db.DB.QueryRowContext(ctx, query, email, code, purpose, time.Now()).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.ExpiresAt,
		&otp.Used,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no active code for %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	return otp, nil
}

// GetByID retrieves a code by its opaque handle
func (r *otpRepository) GetByID(ctx context.Context, id string) (*domain.OneTimeCode, error) {
	query := `
		SELECT id, email, code, purpose, expires_at, used, created_at
		FROM one_time_codes
		WHERE id = $1
	`

	otp := &domain.OneTimeCode{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.ExpiresAt,
		&otp.Used,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("code with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get code by id: %w", err)
	}

	return otp, nil
}

// Delete removes a code by ID. Used to undo an issuance whose email
// dispatch failed.
func (r *otpRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM one_time_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("code with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteExpired deletes all expired codes
func (r *otpRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM one_time_codes WHERE expires_at < $1`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired codes: %w", err)
	}

	return nil
}
