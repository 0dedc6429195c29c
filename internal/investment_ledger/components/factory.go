package components

import (
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/config"
	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/outbox"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
)

// CreateLedgerService creates a LedgerService with all its dependencies.
func CreateLedgerService(
	db persistence.TxExecutor,
	projectRepo project.Repository,
	investmentRepo investment.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.LedgerService, error) {
	minimum, err := shared.ParseAmount(cfg.Ledger.MinimumInvestment)
	if err != nil {
		return nil, err
	}

	baseService := service.NewLedgerService(
		db,
		NewRequestValidator(minimum, logger),
		NewIdempotencyChecker(investmentRepo, projectRepo, logger),
		NewProjectGate(projectRepo, logger),
		NewInvestmentRecorder(investmentRepo, logger),
		NewOutboxManager(outboxRepo, logger),
		projectRepo,
		investmentRepo,
		service.RetryPolicy{
			MaxAttempts: cfg.Ledger.MaxTxAttempts,
			TxTimeout:   cfg.Ledger.TxTimeout,
			Backoff:     cfg.Ledger.RetryBackoff,
		},
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolLedgerService(
		baseService,
		service.WorkerPoolConfig{
			Size:        cfg.WorkerPool.Size,
			MaxBlocking: cfg.WorkerPool.MaxBlocking,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool ledger service, falling back to base service", "error", err)
		return baseService, nil
	}

	logger.Info("Created worker pool ledger service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, nil
}
