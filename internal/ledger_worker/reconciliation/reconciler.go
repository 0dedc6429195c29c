// Package reconciliation checks, out of band, that every project's stored running total equals
// the sum of its investments and stays within the target. It only reads the ledger.
package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
)

type Reconciler struct {
	projectRepo project.Repository
	reports     ledger.ReportRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewReconciler(projectRepo project.Repository, reports ledger.ReportRepository, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		projectRepo: projectRepo,
		reports:     reports,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run compares stored totals with investment sums and stores the report
func (r *Reconciler) Run(ctx context.Context) (*ledger.ReconciliationReport, error) {
	report := &ledger.ReconciliationReport{
		RunID:         uuid.NewString(),
		StartedAt:     r.now(),
		Discrepancies: []ledger.Discrepancy{},
	}
	logger := r.logger.With("run_id", report.RunID)

	checks, err := r.projectRepo.CheckTotals(ctx)
	if err != nil {
		logger.Error("Failed to read project totals", "error", err)
		return nil, fmt.Errorf("failed to read project totals: %w", err)
	}

	report.ProjectsChecked = len(checks)
	for _, c := range checks {
		if c.Consistent() {
			continue
		}
		d := ledger.Discrepancy{
			ProjectID:       c.ProjectID,
			StoredRaised:    c.StoredRaised,
			InvestmentSum:   c.InvestmentSum,
			InvestmentCount: c.InvestmentCount,
			TargetAmount:    c.TargetAmount,
			OverTarget:      c.StoredRaised > c.TargetAmount,
		}
		report.Discrepancies = append(report.Discrepancies, d)
		logger.Warn("Project total out of balance",
			"project_id", d.ProjectID,
			"stored_raised", d.StoredRaised,
			"investment_sum", d.InvestmentSum,
			"investment_count", d.InvestmentCount,
			"target_amount", d.TargetAmount,
			"over_target", d.OverTarget,
		)
	}
	report.FinishedAt = r.now()

	if err := r.reports.Save(ctx, report); err != nil {
		logger.Error("Failed to store reconciliation report", "error", err)
		return report, err
	}

	logger.Info("Reconciliation finished",
		"projects_checked", report.ProjectsChecked,
		"discrepancies", len(report.Discrepancies),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report, nil
}
