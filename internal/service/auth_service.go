package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo         repository.UserRepository
	tokenRepo        repository.TokenRepository
	minter           *SessionMinter
	jwtManager       *utils.JWTManager
	blacklistService *TokenBlacklistService
	bcryptCost       int
	refreshExpiry    time.Duration
	logger           *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	minter *SessionMinter,
	jwtManager *utils.JWTManager,
	blacklistService *TokenBlacklistService,
	bcryptCost int,
	refreshExpiry time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		minter:           minter,
		jwtManager:       jwtManager,
		blacklistService: blacklistService,
		bcryptCost:       bcryptCost,
		refreshExpiry:    refreshExpiry,
		logger:           logger,
	}
}

// Register creates a new user with the default role and mints a session.
// Role is never taken from the request.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error) {
	if err := NewValidationError(utils.ValidateSignup(req.Name, req.Email, req.Password, req.ConfirmPassword)); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        utils.SanitizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
	}

	// The unique constraint is the duplicate check; a racing signup with
	// the same email loses cleanly instead of slipping past a read.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.minter.Mint(ctx, user)
}

// Login authenticates a user with email and password. Missing user, missing
// password hash and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.minter.Mint(ctx, user)
}

// RefreshToken rotates the refresh token and mints a new session. The role
// embedded in the new access token is re-derived from the current user row,
// so an admin role change takes effect on the next refresh.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidSession
	}

	tokenHash := HashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// User deleted since issuance; the session dies with it.
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshExpiry); err != nil {
		s.logger.Warn("failed to blacklist rotated token", zap.Error(err))
	}

	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to delete rotated token", zap.Error(err))
	}

	return s.minter.Mint(ctx, user)
}

// Logout invalidates the refresh token
func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	tokenHash := HashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil || dbToken.UserID != userID {
		return nil
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshExpiry); err != nil {
		s.logger.Warn("failed to blacklist token on logout", zap.Error(err))
	}

	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to delete token on logout", zap.Error(err))
	}

	return nil
}

// GetUser gets the profile of a user
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return userResponse(user), nil
}

// ValidateToken validates an access token and returns its claims
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
