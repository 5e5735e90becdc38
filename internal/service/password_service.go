package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/utils"
	"go.uber.org/zap"
)

// passwordService implements PasswordService interface
type passwordService struct {
	userRepo   repository.UserRepository
	otp        *OTPService
	bcryptCost int
	logger     *zap.Logger
}

// NewPasswordService creates a new password service
func NewPasswordService(userRepo repository.UserRepository, otp *OTPService, bcryptCost int, logger *zap.Logger) PasswordService {
	return &passwordService{
		userRepo:   userRepo,
		otp:        otp,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Forgot issues a PASSWORD_RESET code when the email belongs to a user. An
// unknown email is not an error: the handler reports the same generic
// success either way, and no code is created.
func (s *passwordService) Forgot(ctx context.Context, email string) error {
	email = utils.SanitizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return s.otp.Issue(ctx, user.Email, domain.OTPPurposePasswordReset)
}

// VerifyOTP consumes a code and returns its opaque handle.
func (s *passwordService) VerifyOTP(ctx context.Context, email, code, purpose string) (string, error) {
	p := domain.OTPPurpose(purpose)
	if !p.Valid() {
		return "", ErrInvalidCode
	}

	return s.otp.Verify(ctx, utils.SanitizeEmail(email), code, p)
}

// Reset replaces the password after the OTP step. The handle must reference
// a consumed PASSWORD_RESET code for the same email; the earlier verify call
// alone is not trusted. A successful reset discards the code row, so the
// handle authorizes exactly one reset.
func (s *passwordService) Reset(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if !utils.ValidatePassword(req.NewPassword) {
		return NewValidationError([]dto.FieldError{{
			Field:   "new_password",
			Message: "password must be at least 8 characters long and contain uppercase, lowercase, and number",
		}})
	}

	email := utils.SanitizeEmail(req.Email)

	if err := s.otp.CheckHandle(ctx, req.OTPID, email, domain.OTPPurposePasswordReset); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.otp.Discard(ctx, req.OTPID); err != nil {
		s.logger.Warn("failed to discard reset code",
			zap.String("otp_id", req.OTPID), zap.Error(err))
	}

	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// Change replaces the password of an authenticated user after verifying the
// current one.
func (s *passwordService) Change(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if err := NewValidationError(utils.ValidateNewPassword(req.NewPassword, req.ConfirmPassword)); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Set gives an OAuth-only account its first password. Accounts that already
// have one are directed to the change flow instead.
func (s *passwordService) Set(ctx context.Context, userID string, req *dto.SetPasswordRequest) error {
	if err := NewValidationError(utils.ValidateNewPassword(req.Password, req.ConfirmPassword)); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.HasPassword() {
		return ErrPasswordAlreadySet
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
