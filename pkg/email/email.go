package email

import (
	"context"
	"errors"
)

// Provider names accepted by EMAIL_PROVIDER
const (
	ProviderResend  = "resend"
	ProviderSES     = "ses"
	ProviderSMTP    = "smtp"
	ProviderConsole = "console"
)

// ErrNotConfigured is returned when a provider lacks credentials.
var ErrNotConfigured = errors.New("email: provider not configured")

// Message is the payload handed to a provider.
type Message struct {
	From     string
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendResult is the provider's acknowledgment of an accepted message.
type SendResult struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// Sender delivers a single message and blocks until the provider answers.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
	Name() string
}

func validate(msg *Message) error {
	if msg == nil {
		return errors.New("email: nil message")
	}
	if msg.From == "" {
		return errors.New("email: missing sender")
	}
	if len(msg.To) == 0 {
		return errors.New("email: missing recipient")
	}
	return nil
}
