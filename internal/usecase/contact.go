package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/captcha"
	"agency-site-backend/pkg/email"
	"agency-site-backend/pkg/metrics"
	"agency-site-backend/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const archiveTimeout = 5 * time.Second

// ContactDeps are the collaborators of the contact usecase. Verifier,
// Archive, Metrics and Security are optional.
type ContactDeps struct {
	Sender   email.Sender
	Validate *validator.Validate
	Verifier captcha.Verifier
	Archive  domain.FailedDeliveryRepository
	Metrics  *metrics.Metrics
	Security *security.SecurityLogger
	Logger   *slog.Logger
	// From is the fixed sender identity, To the configured recipient.
	From string
	To   string
}

type contactUsecase struct {
	deps ContactDeps
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(deps ContactDeps) domain.ContactUsecase {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &contactUsecase{deps: deps}
}

// SendContactMessage re-validates the request, verifies the bot token when
// a verifier is configured, and hands one message to the email provider.
// A provider failure is final: it is logged, optionally archived, and
// returned as *domain.DeliveryError.
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest, meta domain.SubmissionMeta) (*domain.DeliveryReceipt, error) {
	if err := uc.checkRequest(req); err != nil {
		uc.deps.Metrics.RecordContactSubmission(metrics.OutcomeInvalid)
		uc.deps.Security.LogValidationFailed(ctx, req.Email, meta.RemoteIP, meta.RequestID, err.Error())
		return nil, err
	}

	if uc.deps.Verifier != nil {
		if err := uc.deps.Verifier.Verify(ctx, req.RecaptchaToken, meta.RemoteIP); err != nil {
			uc.deps.Metrics.RecordContactSubmission(metrics.OutcomeBotRejected)
			uc.deps.Security.LogBotCheckFailed(ctx, req.Email, meta.RemoteIP, meta.RequestID, err.Error())
			return nil, fmt.Errorf("%w: %v", domain.ErrBotCheckFailed, err)
		}
	}

	msg, err := BuildContactEmail(req, uc.deps.From, uc.deps.To)
	if err != nil {
		return nil, err
	}

	provider := uc.deps.Sender.Name()
	start := time.Now()
	result, err := uc.deps.Sender.Send(ctx, msg)
	uc.deps.Metrics.RecordEmailSend(provider, err, time.Since(start))

	if err != nil {
		uc.deps.Metrics.RecordContactSubmission(metrics.OutcomeDeliveryFailed)
		uc.deps.Security.LogDeliveryFailed(ctx, req.Email, provider, meta.RequestID, err)
		uc.deps.Logger.ErrorContext(ctx, "Failed to send contact email",
			"provider", provider,
			"request_id", meta.RequestID,
			"error", err,
		)
		uc.archive(ctx, msg, provider, meta, err)
		return nil, &domain.DeliveryError{Provider: provider, Err: err}
	}

	uc.deps.Metrics.RecordContactSubmission(metrics.OutcomeSuccess)
	uc.deps.Logger.InfoContext(ctx, "Contact email sent",
		"provider", result.Provider,
		"id", result.ID,
		"request_id", meta.RequestID,
	)
	return &domain.DeliveryReceipt{ID: result.ID, Provider: result.Provider}, nil
}

// checkRequest applies the server rules: required fields first, then the
// email pattern.
func (uc *contactUsecase) checkRequest(req *domain.ContactRequest) error {
	err := uc.deps.Validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate contact request: %w", err)
	}
	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			return domain.ErrMissingFields
		}
	}
	return domain.ErrInvalidEmail
}

// archive keeps the failed message for redelivery. It must not change the
// outcome of the request, so errors are only logged.
func (uc *contactUsecase) archive(ctx context.Context, msg *email.Message, provider string, meta domain.SubmissionMeta, sendErr error) {
	if uc.deps.Archive == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	fd := &domain.FailedDelivery{
		ID:          uuid.New().String(),
		Provider:    provider,
		FromAddress: msg.From,
		ToAddress:   strings.Join(msg.To, ","),
		ReplyTo:     msg.ReplyTo,
		Subject:     msg.Subject,
		HTMLBody:    msg.HTMLBody,
		TextBody:    msg.TextBody,
		LastError:   sendErr.Error(),
		Attempts:    1,
		RequestID:   meta.RequestID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.deps.Archive.Create(ctx, fd); err != nil {
		uc.deps.Logger.ErrorContext(ctx, "Failed to archive undelivered contact email",
			"request_id", meta.RequestID,
			"error", err,
		)
	}
}

// BuildContactEmail turns a submission into the provider payload: fixed
// sender, configured recipient, reply-to set to the submitter, subject
// copied from the form.
func BuildContactEmail(req *domain.ContactRequest, from, to string) (*email.Message, error) {
	html, text, err := email.RenderContactEmail(email.ContactEmailData{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return nil, err
	}

	return &email.Message{
		From:     from,
		To:       []string{to},
		ReplyTo:  req.Email,
		Subject:  req.Subject,
		HTMLBody: html,
		TextBody: text,
	}, nil
}
