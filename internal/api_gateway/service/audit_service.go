package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
)

// AuditServiceImpl implements the AuditService interface over the MongoDB projection
type AuditServiceImpl struct {
	ledgerRepo  ledger.Repository
	projectRepo project.Repository
	reports     ledger.ReportRepository
	logger      *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(
	logger *slog.Logger,
	ledgerRepo ledger.Repository,
	projectRepo project.Repository,
	reports ledger.ReportRepository,
) AuditService {
	return &AuditServiceImpl{
		ledgerRepo:  ledgerRepo,
		projectRepo: projectRepo,
		reports:     reports,
		logger:      logger,
	}
}

// ProjectLedger returns a page of entries. The projection is eventually consistent with the ledger.
func (s *AuditServiceImpl) ProjectLedger(ctx context.Context, projectID int64, page, perPage int) ([]*ledger.Entry, int64, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	entries, err := s.ledgerRepo.ListByProject(ctx, projectID, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list ledger entries", "project_id", projectID, "error", err)
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to count ledger entries", "project_id", projectID, "error", err)
		return nil, 0, err
	}

	return entries, total, nil
}

func (s *AuditServiceImpl) InvestmentEntry(ctx context.Context, investmentID uuid.UUID) (*ledger.Entry, error) {
	return s.ledgerRepo.GetByInvestmentID(ctx, investmentID)
}

func (s *AuditServiceImpl) LatestReconciliation(ctx context.Context) (*ledger.ReconciliationReport, error) {
	report, err := s.reports.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNoReconciliationReport
	}
	return report, nil
}
