package domain

import (
	"context"
	"errors"
	"time"
)

var ErrFailedDeliveryNotFound = errors.New("failed delivery not found")

// FailedDelivery is a contact email the provider did not accept, kept so an
// operator can resend it.
type FailedDelivery struct {
	ID                string     `json:"id"`
	Provider          string     `json:"provider"`
	FromAddress       string     `json:"from"`
	ToAddress         string     `json:"to"`
	ReplyTo           string     `json:"reply_to"`
	Subject           string     `json:"subject"`
	HTMLBody          string     `json:"-"`
	TextBody          string     `json:"-"`
	LastError         string     `json:"last_error"`
	Attempts          int        `json:"attempts"`
	RequestID         string     `json:"request_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
}

type FailedDeliveryRepository interface {
	Create(ctx context.Context, fd *FailedDelivery) error
	ListPending(ctx context.Context, limit int) ([]FailedDelivery, error)
	MarkDelivered(ctx context.Context, id, providerMessageID string) error
	RecordAttempt(ctx context.Context, id, lastError string) error
}

// RedeliveryReport summarises one redelivery run
type RedeliveryReport struct {
	Attempted int      `json:"attempted"`
	Delivered int      `json:"delivered"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

type RedeliveryUsecase interface {
	ListPending(ctx context.Context, limit int) ([]FailedDelivery, error)
	Redeliver(ctx context.Context, limit int) (*RedeliveryReport, error)
}
