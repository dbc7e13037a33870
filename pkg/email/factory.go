package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agency-site-backend/config"
)

// NewSenderFromConfig builds the provider selected by EMAIL_PROVIDER.
// config.Validate has already downgraded a credential-less development
// setup to the console provider.
func NewSenderFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Sender, error) {
	var (
		sender Sender
		err    error
	)

	switch cfg.EmailProvider {
	case ProviderResend:
		var s *ResendSender
		if s, err = NewResendSender(cfg.ResendAPIKey); err == nil {
			sender = s
		}
	case ProviderSES:
		var s *SESSender
		if s, err = NewSESSender(ctx, cfg.AWSRegion); err == nil {
			sender = s
		}
	case ProviderSMTP:
		var s *SMTPSender
		if s, err = NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}); err == nil {
			sender = s
		}
	case ProviderConsole:
		sender = NewConsoleSender(logger)
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.EmailProvider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EmailSendTimeout > 0 {
		sender = WithTimeout(sender, cfg.EmailSendTimeout)
	}
	return sender, nil
}

type timeoutSender struct {
	Sender
	timeout time.Duration
}

// WithTimeout bounds every Send call of next by d.
func WithTimeout(next Sender, d time.Duration) Sender {
	return &timeoutSender{Sender: next, timeout: d}
}

func (s *timeoutSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Sender.Send(ctx, msg)
}
