package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/email"
	"agency-site-backend/pkg/metrics"
)

const (
	defaultRedeliveryLimit = 50
	maxRedeliveryLimit     = 500
)

type redeliveryUsecase struct {
	repo    domain.FailedDeliveryRepository
	sender  email.Sender
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRedeliveryUsecase resends archived contact emails through sender.
func NewRedeliveryUsecase(repo domain.FailedDeliveryRepository, sender email.Sender, m *metrics.Metrics, logger *slog.Logger) domain.RedeliveryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &redeliveryUsecase{repo: repo, sender: sender, metrics: m, logger: logger}
}

func (uc *redeliveryUsecase) ListPending(ctx context.Context, limit int) ([]domain.FailedDelivery, error) {
	items, err := uc.repo.ListPending(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list failed deliveries: %w", err)
	}
	return items, nil
}

// Redeliver sends each pending message once, oldest first. One failing
// message does not stop the run.
func (uc *redeliveryUsecase) Redeliver(ctx context.Context, limit int) (*domain.RedeliveryReport, error) {
	pending, err := uc.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &domain.RedeliveryReport{}
	for _, fd := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Attempted++

		result, sendErr := uc.sender.Send(ctx, messageFromArchive(fd))
		if sendErr != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, fd.ID)
			uc.metrics.RecordRedelivery(false)
			uc.logger.WarnContext(ctx, "Redelivery failed", "id", fd.ID, "attempts", fd.Attempts+1, "error", sendErr)
			if err := uc.repo.RecordAttempt(ctx, fd.ID, sendErr.Error()); err != nil {
				return report, fmt.Errorf("record attempt for %s: %w", fd.ID, err)
			}
			continue
		}

		report.Delivered++
		uc.metrics.RecordRedelivery(true)
		if err := uc.repo.MarkDelivered(ctx, fd.ID, result.ID); err != nil {
			return report, fmt.Errorf("mark %s delivered: %w", fd.ID, err)
		}
	}
	return report, nil
}

func messageFromArchive(fd domain.FailedDelivery) *email.Message {
	return &email.Message{
		From:     fd.FromAddress,
		To:       strings.Split(fd.ToAddress, ","),
		ReplyTo:  fd.ReplyTo,
		Subject:  fd.Subject,
		HTMLBody: fd.HTMLBody,
		TextBody: fd.TextBody,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRedeliveryLimit
	}
	if limit > maxRedeliveryLimit {
		return maxRedeliveryLimit
	}
	return limit
}
