package service

import (
	"context"
	"fmt"
	"time"

	"github.com/immochat/auth-service/pkg/database"
)

// TokenBlacklistService tracks revoked refresh tokens in Redis. Only the
// SHA-256 hash of a token is ever stored; entries expire with the token
// itself so the set stays bounded.
type TokenBlacklistService struct {
	redis *database.Redis
}

// NewTokenBlacklistService creates a new token blacklist service
func NewTokenBlacklistService(redis *database.Redis) *TokenBlacklistService {
	return &TokenBlacklistService{redis: redis}
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:token:%s", HashToken(token))
}

// AddToken marks a token as revoked until its natural expiry
func (s *TokenBlacklistService) AddToken(ctx context.Context, token string, expiry time.Duration) error {
	err := s.redis.Client.Set(ctx, blacklistKey(token), "1", expiry).Err()
	if err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsTokenBlacklisted checks if a token has been revoked
func (s *TokenBlacklistService) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	exists, err := s.redis.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// RemoveToken lifts a revocation
func (s *TokenBlacklistService) RemoveToken(ctx context.Context, token string) error {
	err := s.redis.Client.Del(ctx, blacklistKey(token)).Err()
	if err != nil {
		return fmt.Errorf("failed to remove token from blacklist: %w", err)
	}
	return nil
}
