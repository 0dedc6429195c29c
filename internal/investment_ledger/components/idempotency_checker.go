package components

import (
	"context"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
)

type IdempotencyCheckerImpl struct {
	investmentRepo investment.Repository
	projectRepo    project.Repository
	logger         *slog.Logger
}

func NewIdempotencyChecker(investmentRepo investment.Repository, projectRepo project.Repository, logger *slog.Logger) service.IdempotencyChecker {
	return &IdempotencyCheckerImpl{
		investmentRepo: investmentRepo,
		projectRepo:    projectRepo,
		logger:         logger,
	}
}

// FindExisting returns the investment already recorded under the request's idempotency key,
// or nil when the key is unused. A key reused for a different project or amount is rejected.
func (c *IdempotencyCheckerImpl) FindExisting(ctx context.Context, request *service.RecordRequest, amount int64) (*service.RecordResult, error) {
	if request.IdempotencyKey == "" {
		return nil, nil
	}

	logger := c.logger
	if request.CorrelationID != "" {
		logger = c.logger.With("correlation_id", request.CorrelationID)
	}

	existing, err := c.investmentRepo.GetByIdempotencyKey(ctx, request.UserID, request.IdempotencyKey)
	if err != nil {
		logger.Error("Failed to look up idempotency key", "user_id", request.UserID, "key", request.IdempotencyKey, "error", err)
		return nil, ledger.ErrLedgerUnavailable{Cause: err}
	}
	if existing == nil {
		return nil, nil
	}

	if !existing.SameRequest(request.ProjectID, amount) {
		logger.Warn("Idempotency key reused for a different investment",
			"user_id", request.UserID,
			"key", request.IdempotencyKey,
			"existing_project_id", existing.ProjectID,
			"existing_amount", existing.Amount,
			"project_id", request.ProjectID,
			"amount", amount,
		)
		return nil, ledger.ErrIdempotencyKeyReused{Key: request.IdempotencyKey}
	}

	p, err := c.projectRepo.GetByID(ctx, existing.ProjectID)
	if err != nil {
		logger.Error("Failed to load project for replayed investment", "project_id", existing.ProjectID, "error", err)
		return nil, ledger.ErrLedgerUnavailable{Cause: err}
	}

	return &service.RecordResult{Investment: existing, Project: p, Replayed: true}, nil
}
