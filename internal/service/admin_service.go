package service

import (
	"context"
	"fmt"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/repository"
	"go.uber.org/zap"
)

// adminService implements AdminService. Role changes live here and only
// here; self-service endpoints have no role input at all.
type adminService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo repository.UserRepository, logger *zap.Logger) AdminService {
	return &adminService{userRepo: userRepo, logger: logger}
}

// GetUser returns the full profile of any user
func (s *adminService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return userResponse(user), nil
}

// UpdateRole changes a user's role. The new role takes effect in sessions
// on their next refresh.
func (s *adminService) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return NewValidationError([]dto.FieldError{{Field: "role", Message: "role must be ADMIN or CUSTOMER"}})
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("role updated", zap.String("user_id", userID), zap.String("role", string(role)))
	return nil
}

// DeleteUser removes a user and everything that cascades from it
func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}
