package postgres

import (
	"context"
	"fmt"

	"agency-site-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type failedDeliveryRepo struct {
	db *pgxpool.Pool
}

func NewFailedDeliveryRepository(db *pgxpool.Pool) domain.FailedDeliveryRepository {
	return &failedDeliveryRepo{db: db}
}

func (r *failedDeliveryRepo) Create(ctx context.Context, fd *domain.FailedDelivery) error {
	query := `INSERT INTO failed_deliveries (id, provider, from_address, to_address, reply_to, subject, html_body, text_body, last_error, attempts, request_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		fd.ID, fd.Provider, fd.FromAddress, fd.ToAddress, fd.ReplyTo, fd.Subject,
		fd.HTMLBody, fd.TextBody, fd.LastError, fd.Attempts, fd.RequestID, fd.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failed delivery: %w", err)
	}
	return nil
}

// ListPending returns undelivered messages, oldest first.
func (r *failedDeliveryRepo) ListPending(ctx context.Context, limit int) ([]domain.FailedDelivery, error) {
	query := `SELECT id, provider, from_address, to_address, reply_to, subject, html_body, text_body, last_error, attempts, request_id, created_at, delivered_at, provider_message_id
              FROM failed_deliveries WHERE delivered_at IS NULL ORDER BY created_at ASC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed deliveries: %w", err)
	}
	defer rows.Close()

	items := []domain.FailedDelivery{}
	for rows.Next() {
		var fd domain.FailedDelivery
		var providerMessageID *string
		if err := rows.Scan(
			&fd.ID, &fd.Provider, &fd.FromAddress, &fd.ToAddress, &fd.ReplyTo, &fd.Subject,
			&fd.HTMLBody, &fd.TextBody, &fd.LastError, &fd.Attempts, &fd.RequestID,
			&fd.CreatedAt, &fd.DeliveredAt, &providerMessageID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan failed delivery: %w", err)
		}
		if providerMessageID != nil {
			fd.ProviderMessageID = *providerMessageID
		}
		items = append(items, fd)
	}
	return items, rows.Err()
}

func (r *failedDeliveryRepo) MarkDelivered(ctx context.Context, id, providerMessageID string) error {
	query := `UPDATE failed_deliveries SET delivered_at = NOW(), provider_message_id = $2, attempts = attempts + 1
              WHERE id = $1 AND delivered_at IS NULL`
	cmdTag, err := r.db.Exec(ctx, query, id, providerMessageID)
	if err != nil {
		return fmt.Errorf("failed to mark delivery %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrFailedDeliveryNotFound
	}
	return nil
}

func (r *failedDeliveryRepo) RecordAttempt(ctx context.Context, id, lastError string) error {
	query := `UPDATE failed_deliveries SET attempts = attempts + 1, last_error = $2 WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, lastError)
	if err != nil {
		return fmt.Errorf("failed to record attempt for %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrFailedDeliveryNotFound
	}
	return nil
}
