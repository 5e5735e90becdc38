package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender dispatches transactional mail. Implementations must return an
// error on failed delivery so the caller can undo side effects (an issued
// OTP the user never received must not stay active).
type Sender interface {
	SendOTP(ctx context.Context, to, code, purpose string) error
}

// LogSender writes mail to the log instead of dispatching it. Used in
// development and tests.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a Sender that only logs.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendOTP logs the code instead of emailing it.
func (s *LogSender) SendOTP(_ context.Context, to, code, purpose string) error {
	s.logger.Info("email dispatch (log sender)",
		zap.String("to", to),
		zap.String("purpose", purpose),
		zap.String("code", code),
	)
	return nil
}

func otpSubject(purpose string) string {
	return fmt.Sprintf("Your Immochat verification code (%s)", purpose)
}

func otpBody(code string) string {
	return fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.\r\nIf you did not request this code, you can ignore this email.", code)
}
