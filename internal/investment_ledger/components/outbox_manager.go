package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/outbox"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry writes the investment-recorded event in the same transaction as the investment
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, inv *investment.Investment, updated *project.Project) error {
	logger := m.logger
	if inv.CorrelationID != "" {
		logger = m.logger.With("correlation_id", inv.CorrelationID)
	}

	entry := &ledger.Entry{
		EventType:          shared.EventTypeInvestmentRecorded,
		InvestmentID:       inv.ID,
		ProjectID:          inv.ProjectID,
		UserID:             inv.UserID,
		Amount:             inv.Amount,
		PaymentReference:   inv.PaymentReference,
		IdempotencyKey:     inv.IdempotencyKey,
		CorrelationID:      inv.CorrelationID,
		ProjectRaisedAfter: updated.RaisedAmount,
		ProjectTarget:      updated.TargetAmount,
		RecordedAt:         inv.CreatedAt,
		// ProjectedAt is set by the consumer
	}

	message, err := outbox.NewMessage(entry)
	if err != nil {
		logger.Error("Failed to create outbox message (marshal payload)", "investment_id", inv.ID.String(), "error", err)
		return fmt.Errorf("failed to create outbox message payload for investment %s: %w", inv.ID.String(), err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"investment_id", inv.ID.String(),
			"project_id", inv.ProjectID,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for investment %s: %w", inv.ID.String(), err)
	}
	logger.Debug("Outbox message created", "investment_id", inv.ID.String(), "outbox_id", message.ID)

	return nil
}
