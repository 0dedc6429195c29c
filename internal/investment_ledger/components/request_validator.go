package components

import (
	"context"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
)

type RequestValidatorImpl struct {
	minimum int64 // Minor units
	logger  *slog.Logger
}

func NewRequestValidator(minimum int64, logger *slog.Logger) service.RequestValidator {
	return &RequestValidatorImpl{
		minimum: minimum,
		logger:  logger,
	}
}

// Validate parses the amount and checks it against the minimum. It returns the amount in minor units.
func (v *RequestValidatorImpl) Validate(ctx context.Context, request *service.RecordRequest) (int64, error) {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	amount, err := shared.ParseAmount(request.Amount)
	if err != nil {
		logger.Warn("Invalid investment amount", "amount", request.Amount, "error", err)
		return 0, ledger.ErrInvalidAmount{Raw: request.Amount, Reason: err}
	}

	if amount < v.minimum {
		logger.Warn("Investment below minimum", "amount", amount, "minimum", v.minimum)
		return 0, ledger.ErrBelowMinimum{Amount: amount, Minimum: v.minimum}
	}

	return amount, nil
}
