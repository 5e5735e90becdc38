package app

import (
	"context"
	"time"

	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/service"
	"go.uber.org/zap"
)

const janitorSweepTimeout = 30 * time.Second

// Janitor periodically removes expired one-time codes and refresh tokens.
type Janitor struct {
	otp      *service.OTPService
	tokens   repository.TokenRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewJanitor(otp *service.OTPService, tokens repository.TokenRepository, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		otp:      otp,
		tokens:   tokens,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, janitorSweepTimeout)
	defer cancel()

	if err := j.otp.DeleteExpired(ctx); err != nil {
		j.logger.Warn("Failed to delete expired one-time codes", zap.Error(err))
	}

	if err := j.tokens.DeleteExpired(ctx); err != nil {
		j.logger.Warn("Failed to delete expired refresh tokens", zap.Error(err))
	}
}
