package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolLedgerService bounds the number of investment transactions in flight.
// Reads pass straight through to the base service.
type WorkerPoolLedgerService struct {
	baseService LedgerService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size        int
	MaxBlocking int // Callers allowed to wait for a worker; 0 means unbounded
}

var errWorkerPanicked = errors.New("investment worker panicked")

type recordOutcome struct {
	result *RecordResult
	err    error
}

func NewWorkerPoolLedgerService(
	baseService LedgerService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolLedgerService, error) {
	pool, err := ants.NewPool(config.Size, ants.WithMaxBlockingTasks(config.MaxBlocking))
	if err != nil {
		return nil, err
	}

	return &WorkerPoolLedgerService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// RecordInvestment runs the investment on a pooled worker and waits for its outcome
func (s *WorkerPoolLedgerService) RecordInvestment(ctx context.Context, request *RecordRequest) (*RecordResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Debug("Submitting investment to worker pool",
		"user_id", request.UserID,
		"project_id", request.ProjectID,
	)

	outcome := make(chan recordOutcome, 1)

	// Copy so the caller can't mutate the request while a worker reads it
	requestCopy := *request

	err := s.pool.Submit(func() {
		o := recordOutcome{err: ledger.ErrLedgerUnavailable{Cause: errWorkerPanicked}}
		defer func() { outcome <- o }()
		o.result, o.err = s.baseService.RecordInvestment(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit investment to worker pool",
			"user_id", request.UserID,
			"project_id", request.ProjectID,
			"error", err,
		)
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			return nil, ledger.ErrLedgerUnavailable{Cause: err}
		}
		return nil, err
	}

	// The worker observes ctx and returns promptly once it is done. Waiting for its outcome
	// keeps a commit that raced the deadline from being reported as unavailable.
	o := <-outcome
	return o.result, o.err
}

func (s *WorkerPoolLedgerService) ListInvestmentsForUser(ctx context.Context, userID string) (*UserInvestments, error) {
	return s.baseService.ListInvestmentsForUser(ctx, userID)
}

func (s *WorkerPoolLedgerService) ListInvestmentsForProject(ctx context.Context, projectID int64) (*ProjectInvestments, error) {
	return s.baseService.ListInvestmentsForProject(ctx, projectID)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolLedgerService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolLedgerService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolLedgerService) Capacity() int {
	return s.pool.Cap()
}
