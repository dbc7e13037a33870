package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// resendEmails is the part of the Resend client the sender uses.
type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender implements Sender using the Resend transactional API.
type ResendSender struct {
	emails resendEmails
}

// NewResendSender creates a sender authenticated with apiKey.
func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend: %w", ErrNotConfigured)
	}
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails}, nil
}

func (s *ResendSender) Name() string { return ProviderResend }

// Send sends an email via Resend. The returned ID is Resend's email id.
func (s *ResendSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("resend: %w", err)
	}

	return &SendResult{ID: sent.Id, Provider: ProviderResend}, nil
}
