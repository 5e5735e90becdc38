package service

import (
	"context"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
)

// AuthService defines methods for credential authentication and sessions
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error)
}

// PasswordService defines the OTP-backed credential lifecycle operations
type PasswordService interface {
	// Forgot issues a reset code if the email belongs to a user. The caller
	// always reports the same generic success regardless.
	Forgot(ctx context.Context, email string) error
	// VerifyOTP consumes an active code and returns the opaque handle the
	// reset step must present.
	VerifyOTP(ctx context.Context, email, code, purpose string) (string, error)
	Reset(ctx context.Context, req *dto.ResetPasswordRequest) error
	Change(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	Set(ctx context.Context, userID string, req *dto.SetPasswordRequest) error
}

// OAuthService defines the external identity sign-in flow
type OAuthService interface {
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*AuthResponseWithRefreshToken, error)
}

// AdminService defines the admin-only user mutations
type AdminService interface {
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	DeleteUser(ctx context.Context, userID string) error
}
