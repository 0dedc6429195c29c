package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// RetryPolicy bounds how a transaction that hit a transient conflict is re-run
type RetryPolicy struct {
	MaxAttempts int
	TxTimeout   time.Duration
	Backoff     time.Duration // Linear: attempt n waits n*Backoff
}

type LedgerServiceImpl struct {
	db             persistence.TxExecutor
	validator      RequestValidator
	idempotency    IdempotencyChecker
	gate           ProjectGate
	recorder       InvestmentRecorder
	outboxManager  OutboxManager
	projectRepo    project.Repository
	investmentRepo investment.Repository
	policy         RetryPolicy
	logger         *slog.Logger
}

func NewLedgerService(
	db persistence.TxExecutor,
	validator RequestValidator,
	idempotency IdempotencyChecker,
	gate ProjectGate,
	recorder InvestmentRecorder,
	outboxManager OutboxManager,
	projectRepo project.Repository,
	investmentRepo investment.Repository,
	policy RetryPolicy,
	logger *slog.Logger,
) LedgerService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &LedgerServiceImpl{
		db:             db,
		validator:      validator,
		idempotency:    idempotency,
		gate:           gate,
		recorder:       recorder,
		outboxManager:  outboxManager,
		projectRepo:    projectRepo,
		investmentRepo: investmentRepo,
		policy:         policy,
		logger:         logger,
	}
}

// RecordInvestment validates the request, then locks the project, reserves the amount,
// inserts the investment and writes the outbox event in one transaction. Any failure leaves
// no trace in the store.
func (s *LedgerServiceImpl) RecordInvestment(ctx context.Context, request *RecordRequest) (*RecordResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("user_id", request.UserID, "project_id", request.ProjectID)

	amount, err := s.validator.Validate(ctx, request)
	if err != nil {
		logger.Warn("Investment rejected by validation", "amount", request.Amount, "error", err)
		return nil, err
	}

	if request.IdempotencyKey != "" {
		existing, err := s.idempotency.FindExisting(ctx, request, amount)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			logger.Info("Investment already recorded for idempotency key", "investment_id", existing.Investment.ID.String())
			return existing, nil
		}
	}

	var result *RecordResult
	// A lost commit acknowledgement is only safe to re-run when the idempotency key can
	// catch the first attempt if it did commit
	replayable := request.IdempotencyKey != ""
	err = s.runWithRetry(ctx, logger, replayable, func(attemptCtx context.Context) error {
		return s.db.ExecuteTx(attemptCtx, func(tx pgx.Tx) error {
			updated, err := s.gate.LockAndReserve(attemptCtx, tx, request.ProjectID, amount)
			if err != nil {
				return err
			}

			inv, err := s.recorder.Insert(attemptCtx, tx, request, amount)
			if err != nil {
				return err
			}

			if err := s.outboxManager.CreateOutboxEntry(attemptCtx, tx, inv, updated); err != nil {
				return err
			}

			result = &RecordResult{Investment: inv, Project: updated}
			return nil
		})
	})

	switch {
	case err == nil:
		logger.Info("Investment recorded",
			"investment_id", result.Investment.ID.String(),
			"amount", result.Investment.Amount,
			"raised_amount", result.Project.RaisedAmount,
			"target_amount", result.Project.TargetAmount,
		)
		return result, nil

	case errors.Is(err, investment.ErrDuplicateIdempotencyKey{}):
		// A concurrent request with the same key committed first
		existing, findErr := s.idempotency.FindExisting(ctx, request, amount)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, ledger.ErrLedgerUnavailable{Cause: err}
		}
		logger.Info("Investment recorded concurrently under the same idempotency key", "investment_id", existing.Investment.ID.String())
		return existing, nil

	case ledger.IsRejection(err):
		logger.Warn("Investment rejected", "amount", amount, "code", ledger.CodeOf(err), "error", err)
		return nil, err

	default:
		logger.Error("Failed to record investment", "amount", amount, "error", err)
		return nil, unavailable(err)
	}
}

// runWithRetry re-runs fn while it fails with a transient storage error. Each attempt gets
// its own deadline; a rolled back attempt has no effect so re-running it is safe. A commit
// with an unknown outcome is re-run only when replayable.
func (s *LedgerServiceImpl) runWithRetry(ctx context.Context, logger *slog.Logger, replayable bool, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := s.attemptContext(ctx)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !s.retryable(ctx, err, replayable) {
			if errors.Is(err, persistence.ErrCommitUnknown) {
				logger.Error("Investment commit outcome unknown", "attempt", attempt, "error", err)
			}
			return err
		}

		lastErr = err
		logger.Warn("Transient ledger failure", "attempt", attempt, "max_attempts", s.policy.MaxAttempts, "error", err)

		if attempt < s.policy.MaxAttempts {
			select {
			case <-ctx.Done():
				return ledger.ErrLedgerUnavailable{Cause: ctx.Err()}
			case <-time.After(time.Duration(attempt) * s.policy.Backoff):
			}
		}
	}

	return ledger.ErrLedgerUnavailable{Cause: fmt.Errorf("gave up after %d attempts: %w", s.policy.MaxAttempts, lastErr)}
}

func (s *LedgerServiceImpl) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.TxTimeout > 0 {
		return context.WithTimeout(ctx, s.policy.TxTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *LedgerServiceImpl) retryable(ctx context.Context, err error, replayable bool) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, persistence.ErrCommitUnknown) {
		return replayable
	}
	if persistence.IsTransient(err) {
		return true
	}
	// The attempt ran out of time but the caller is still waiting
	return errors.Is(err, context.DeadlineExceeded)
}

func unavailable(err error) error {
	if errors.Is(err, ledger.ErrLedgerUnavailable{}) {
		return err
	}
	return ledger.ErrLedgerUnavailable{Cause: err}
}

// ListInvestmentsForUser returns the user's investments with project summaries, newest first
func (s *LedgerServiceImpl) ListInvestmentsForUser(ctx context.Context, userID string) (*UserInvestments, error) {
	investments, err := s.investmentRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user investments", "user_id", userID, "error", err)
		return nil, unavailable(err)
	}

	result := &UserInvestments{Investments: investments}
	projects := make(map[int64]struct{})
	for _, inv := range investments {
		result.TotalInvested += inv.Amount
		projects[inv.ProjectID] = struct{}{}
	}
	result.TotalProjects = len(projects)

	return result, nil
}

// ListInvestmentsForProject reads the project and its investments from one snapshot so the
// summary agrees with the stored running total
func (s *LedgerServiceImpl) ListInvestmentsForProject(ctx context.Context, projectID int64) (*ProjectInvestments, error) {
	var result *ProjectInvestments
	err := s.db.ExecuteReadOnlyTx(ctx, func(tx pgx.Tx) error {
		p, err := s.projectRepo.WithTx(tx).GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		investments, err := s.investmentRepo.WithTx(tx).ListByProject(ctx, projectID)
		if err != nil {
			return err
		}

		result = &ProjectInvestments{
			Project:        p,
			Investments:    investments,
			TotalInvestors: int64(len(investments)),
		}
		for _, inv := range investments {
			result.TotalRaised += inv.Amount
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ledger.ErrProjectNotFound{}) {
			return nil, err
		}
		s.logger.Error("Failed to list project investments", "project_id", projectID, "error", err)
		return nil, unavailable(err)
	}

	if result.TotalRaised != result.Project.RaisedAmount {
		s.logger.Warn("Project raised amount differs from its investments",
			"project_id", projectID,
			"raised_amount", result.Project.RaisedAmount,
			"investment_sum", result.TotalRaised,
		)
	}

	return result, nil
}
