package domain

import (
	"context"
	"errors"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrBotCheckFailed = errors.New("bot verification failed")
)

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,contact_email"`
	Phone          string `json:"phone"`
	Subject        string `json:"subject" validate:"required"`
	Message        string `json:"message" validate:"required"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// SubmissionMeta describes where a submission came from
type SubmissionMeta struct {
	RemoteIP  string
	UserAgent string
	RequestID string
}

// DeliveryReceipt is the provider's acknowledgment returned to the client
type DeliveryReceipt struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// DeliveryError wraps a provider failure. The wrapped error text is
// returned to the client as diagnostic detail.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return "failed to send email: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage validates the request and delivers it synchronously.
	SendContactMessage(ctx context.Context, req *ContactRequest, meta SubmissionMeta) (*DeliveryReceipt, error)
}
