package email

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // optional, some relays allow unauthenticated submission
	Password string
	Timeout  time.Duration
}

// SMTPSender implements Sender using go-mail.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender creates an SMTP sender. Only the host is mandatory.
func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp: %w", ErrNotConfigured)
	}
	if config.Port == 0 {
		config.Port = 587
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPSender{config: config}, nil
}

func (s *SMTPSender) Name() string { return ProviderSMTP }

// Send delivers the message over SMTP. SMTP servers do not reliably return a
// message id, so the Message-ID header we generate doubles as the ack.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}

	m, messageID, err := buildMailMsg(msg)
	if err != nil {
		return nil, err
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("smtp: failed to create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, fmt.Errorf("smtp: failed to send email: %w", err)
	}

	return &SendResult{ID: messageID, Provider: ProviderSMTP}, nil
}

func buildMailMsg(msg *Message) (*mail.Msg, string, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, "", fmt.Errorf("smtp: invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, "", fmt.Errorf("smtp: invalid to address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, "", fmt.Errorf("smtp: invalid reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	messageID := uuid.New().String()
	m.SetMessageIDWithValue(messageID)
	return m, messageID, nil
}

// clientOptions picks the TLS mode from the port.
func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(s.config.Timeout),
	}

	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		// 25, or a local catcher like Mailpit on 1025
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}
	return opts
}
