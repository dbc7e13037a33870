package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ConsoleSender logs messages instead of delivering them. It backs local
// development and the degraded mode used when no provider is configured.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Name() string { return ProviderConsole }

func (s *ConsoleSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}

	id := "console-" + uuid.New().String()
	s.logger.InfoContext(ctx, "console email (not delivered)",
		"id", id,
		"from", msg.From,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"text", msg.TextBody,
	)
	return &SendResult{ID: id, Provider: ProviderConsole}, nil
}
