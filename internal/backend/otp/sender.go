package otp

import (
	"context"
	"log/slog"

	"zirrmi/internal/verification"
	"zirrmi/pkg/email"
)

// Sender delivers a code to its destination.
type Sender interface {
	Deliver(ctx context.Context, ch verification.Channel, destination, code string) error
}

// LogSender writes codes to the log instead of delivering them. It is meant for
// local development only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Deliver(ctx context.Context, ch verification.Channel, destination, code string) error {
	masked := email.Mask(destination)
	if ch == verification.ChannelSMS {
		masked = email.MaskPhone(destination)
	}
	s.logger.InfoContext(ctx, "verification code issued",
		"channel", ch.String(),
		"destination", masked,
		"code", code,
	)
	return nil
}
