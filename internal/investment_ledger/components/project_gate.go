package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/jackc/pgx/v5"
)

// ProjectGateImpl admits an investment against the project's status and target
type ProjectGateImpl struct {
	projectRepo project.Repository
	logger      *slog.Logger
}

func NewProjectGate(projectRepo project.Repository, logger *slog.Logger) service.ProjectGate {
	return &ProjectGateImpl{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// LockAndReserve locks the project row, checks the admission rules against the locked state
// and raises the running total. The lock is held until tx ends, so concurrent investments in
// the same project are evaluated one after another.
func (g *ProjectGateImpl) LockAndReserve(ctx context.Context, tx pgx.Tx, projectID int64, amount int64) (*project.Project, error) {
	projectRepoTx := g.projectRepo.WithTx(tx)

	locked, err := projectRepoTx.LockForUpdate(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound{}) {
			g.logger.Warn("Project not found for lock", "project_id", projectID)
			return nil, err
		}
		g.logger.Error("Failed to lock project", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("failed to lock project %d: %w", projectID, err)
	}

	if !locked.AcceptsInvestments() {
		return nil, ledger.ErrProjectNotAcceptingInvestments{ProjectID: projectID, Status: string(locked.Status)}
	}
	if !locked.CanAdmit(amount) {
		return nil, ledger.ErrTargetExceeded{ProjectID: projectID, Amount: amount, Headroom: locked.Headroom()}
	}

	updated, err := projectRepoTx.IncreaseRaised(ctx, projectID, amount)
	if err != nil {
		var rejected project.ErrRaiseRejected
		if errors.As(err, &rejected) {
			// The guarded update saw a different row than the lock did
			return nil, ledger.ErrTargetExceeded{ProjectID: projectID, Amount: amount, Headroom: locked.Headroom()}
		}
		g.logger.Error("Failed to raise project total", "project_id", projectID, "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to raise project %d: %w", projectID, err)
	}

	g.logger.Debug("Project total raised",
		"project_id", projectID,
		"amount", amount,
		"raised_amount", updated.RaisedAmount,
		"version", updated.Version,
	)
	return updated, nil
}
