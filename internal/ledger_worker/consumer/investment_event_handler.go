package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/platform/messaging/producers"
)

// InvestmentEventHandler projects investment events from Kafka into the audit ledger
type InvestmentEventHandler struct {
	ledgerRepo ledger.Repository
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

// NewInvestmentEventHandler creates a new handler. producer may be nil when no DLQ is configured.
func NewInvestmentEventHandler(
	logger *slog.Logger,
	ledgerRepo ledger.Repository,
	producer producers.DeadLetterPublisher,
) *InvestmentEventHandler {
	return &InvestmentEventHandler{
		ledgerRepo: ledgerRepo,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage returns nil when the offset can be committed. Only storage failures are
// returned so the message is redelivered.
func (h *InvestmentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var entry ledger.Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("failed to unmarshal ledger entry: %s", err))
	}
	if err := entry.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("invalid ledger entry: %s", err))
	}

	logger := h.logger
	if entry.CorrelationID != "" {
		logger = h.logger.With("correlation_id", entry.CorrelationID)
	}

	if err := h.ledgerRepo.Create(ctx, &entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEntry{}) {
			logger.Info("Investment already projected", "investment_id", entry.InvestmentID.String())
			return nil
		}
		logger.Error("Failed to project investment", "investment_id", entry.InvestmentID.String(), "error", err)
		return fmt.Errorf("projecting investment %s failed: %w", entry.InvestmentID.String(), err)
	}

	logger.Info("Investment projected",
		"investment_id", entry.InvestmentID.String(),
		"project_id", entry.ProjectID,
		"amount", entry.Amount,
	)
	return nil
}

func (h *InvestmentEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	h.logger.Error("Unprocessable investment event", "message_key", string(key), "reason", reason)

	if h.producer == nil {
		h.logger.Warn("No DLQ configured, dropping unprocessable message", "message_key", string(key))
		return nil
	}

	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "message_key", string(key), "dlq_error", err)
		return fmt.Errorf("dead-lettering message %q failed: %w", string(key), err)
	}
	return nil
}
