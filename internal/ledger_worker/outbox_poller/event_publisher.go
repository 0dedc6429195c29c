package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/outbox"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/greenova8-investment-ledger/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the event bus
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent sends the message's ledger entry keyed by project id, then marks it PROCESSED.
// A crash between the two steps republishes the entry; the projection ignores the duplicate.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	entry, err := message.LedgerEntry()
	if err != nil {
		p.logger.Error("Failed to unmarshal ledger entry from outbox payload",
			"outbox_id", message.ID, "investment_id", message.InvestmentID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	if err := p.producer.Publish(ctx, message.PartitionKey(), entry); err != nil {
		logger.Error("Failed to publish investment event", "outbox_id", message.ID, "investment_id", entry.InvestmentID, "error", err)
		return fmt.Errorf("failed to publish investment event %s: %w", entry.InvestmentID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "investment_id", entry.InvestmentID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", entry.InvestmentID, message.ID, err)
	}

	logger.Info("Investment event published", "outbox_id", message.ID, "investment_id", entry.InvestmentID, "project_id", entry.ProjectID)
	return nil
}
