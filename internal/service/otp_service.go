package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/mailer"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/utils"
	"go.uber.org/zap"
)

// OTPService issues and verifies one-time codes. All state lives in the
// store; issuance and verification each ride a single transaction or
// conditional statement, so concurrent requests cannot double-issue or
// double-spend a code.
type OTPService struct {
	codes  repository.OTPRepository
	mail   mailer.Sender
	ttl    time.Duration
	logger *zap.Logger
}

// NewOTPService creates a new OTP service
func NewOTPService(codes repository.OTPRepository, mail mailer.Sender, ttl time.Duration, logger *zap.Logger) *OTPService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPService{
		codes:  codes,
		mail:   mail,
		ttl:    ttl,
		logger: logger,
	}
}

// Issue generates a fresh code for (email, purpose), invalidating any prior
// active one, and dispatches it. A failed dispatch undoes the issuance and
// surfaces the failure: the user must never be left with a code they were
// never sent.
func (s *OTPService) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &domain.OneTimeCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.codes.Replace(ctx, otp); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mail.SendOTP(ctx, email, code, string(purpose)); err != nil {
		if delErr := s.codes.Delete(ctx, otp.ID); delErr != nil {
			s.logger.Error("failed to undo issuance after dispatch failure",
				zap.String("otp_id", otp.ID), zap.Error(delErr))
		}
		return fmt.Errorf("failed to dispatch code: %w", err)
	}

	return nil
}

// Verify consumes an active code and returns the opaque handle downstream
// steps must present. All failure modes collapse into ErrInvalidCode.
func (s *OTPService) Verify(ctx context.Context, email, code string, purpose domain.OTPPurpose) (string, error) {
	otp, err := s.codes.Consume(ctx, email, code, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("failed to verify code: %w", err)
	}

	return otp.ID, nil
}

// CheckHandle re-validates an OTP handle before the next step trusts it.
// The handle travels through a client-visible channel, so it proves nothing
// until matched against a consumed code for the same email and purpose.
func (s *OTPService) CheckHandle(ctx context.Context, otpID, email string, purpose domain.OTPPurpose) error {
	otp, err := s.codes.GetByID(ctx, otpID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to check handle: %w", err)
	}

	if !otp.Used || otp.Email != email || otp.Purpose != purpose {
		return ErrInvalidCode
	}

	return nil
}

// Discard removes a code row so its handle cannot be presented again. A
// handle that is already gone is not an error.
func (s *OTPService) Discard(ctx context.Context, otpID string) error {
	if err := s.codes.Delete(ctx, otpID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to discard code: %w", err)
	}
	return nil
}

// DeleteExpired garbage-collects dead codes.
func (s *OTPService) DeleteExpired(ctx context.Context) error {
	return s.codes.DeleteExpired(ctx)
}
