package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/jackc/pgx/v5"
)

type InvestmentRecorderImpl struct {
	investmentRepo investment.Repository
	logger         *slog.Logger
}

func NewInvestmentRecorder(investmentRepo investment.Repository, logger *slog.Logger) service.InvestmentRecorder {
	return &InvestmentRecorderImpl{
		investmentRepo: investmentRepo,
		logger:         logger,
	}
}

// Insert creates the investment row inside tx
func (r *InvestmentRecorderImpl) Insert(ctx context.Context, tx pgx.Tx, request *service.RecordRequest, amount int64) (*investment.Investment, error) {
	inv, err := investment.NewInvestment(
		request.UserID,
		request.ProjectID,
		amount,
		request.PaymentReference,
		request.IdempotencyKey,
		request.CorrelationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build investment: %w", err)
	}

	if err := r.investmentRepo.WithTx(tx).Create(ctx, inv); err != nil {
		if errors.Is(err, investment.ErrDuplicateIdempotencyKey{}) {
			r.logger.Info("Idempotency key already used", "user_id", inv.UserID, "key", inv.IdempotencyKey)
			return nil, err
		}
		r.logger.Error("Failed to insert investment", "investment_id", inv.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to insert investment %s: %w", inv.ID.String(), err)
	}

	return inv, nil
}
