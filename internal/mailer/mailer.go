package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Mailer delivers a single plain-text message. Implementations must respect
// ctx cancellation so a slow provider cannot stall the caller.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, text string) error
}

// New selects a provider implementation from config.
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "mailersend":
		return NewMailerSendMailer(cfg)
	case "dev", "":
		return NewDevMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// DevMailer logs messages instead of delivering them.
type DevMailer struct {
	logger *zap.Logger
}

// NewDevMailer builds the logging mailer used in development and tests.
func NewDevMailer(logger *zap.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

func (d *DevMailer) Send(_ context.Context, toEmail, subject, text string) error {
	d.logger.Info("dev mail",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", text))
	return nil
}
