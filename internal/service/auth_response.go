package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/utils"
)

// AuthResponseWithRefreshToken contains auth response and refresh token
type AuthResponseWithRefreshToken struct {
	AuthResponse *dto.AuthResponse
	RefreshToken string
	ExpiresIn    int // Refresh token expiry in seconds
}

// SessionMinter issues access/refresh token pairs for a user and persists
// the refresh token hash. Shared by the credentials and OAuth entry points
// so both mint identical sessions.
type SessionMinter struct {
	jwtManager         *utils.JWTManager
	tokenRepo          repository.TokenRepository
	refreshTokenExpiry time.Duration
}

// NewSessionMinter creates a session minter
func NewSessionMinter(jwtManager *utils.JWTManager, tokenRepo repository.TokenRepository, refreshTokenExpiry time.Duration) *SessionMinter {
	return &SessionMinter{
		jwtManager:         jwtManager,
		tokenRepo:          tokenRepo,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// Mint issues a session for the user. Role is read from the user record at
// this moment, never from a previous token.
func (m *SessionMinter) Mint(ctx context.Context, user *domain.User) (*AuthResponseWithRefreshToken, error) {
	accessToken, err := m.jwtManager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := m.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshTokenEntity := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: HashToken(refreshToken),
		ExpiresAt: time.Now().Add(m.refreshTokenExpiry),
	}

	if err := m.tokenRepo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResponseWithRefreshToken{
		AuthResponse: &dto.AuthResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   m.jwtManager.GetAccessTokenExpiry(),
			User: dto.UserInfo{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
				Role:  string(user.Role),
			},
		},
		RefreshToken: refreshToken,
		ExpiresIn:    int(m.refreshTokenExpiry.Seconds()),
	}, nil
}

// HashToken hashes a token using SHA-256 for storage.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func userResponse(user *domain.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        string(user.Role),
		Phone:       user.Phone,
		Company:     user.Company,
		Bio:         user.Bio,
		ImageURL:    user.ImageURL,
		HasPassword: user.HasPassword(),
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   user.UpdatedAt.Format(time.RFC3339),
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		response.LastLoginAt = &lastLogin
	}

	return response
}
