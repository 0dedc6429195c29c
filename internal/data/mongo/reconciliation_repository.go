package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
)

// ReconciliationCollectionName holds one document per reconciliation run
const ReconciliationCollectionName = "reconciliation_reports"

// ReconciliationRepository implements ledger.ReportRepository for MongoDB
type ReconciliationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReconciliationRepository creates a new MongoDB report repository
func NewReconciliationRepository(logger *slog.Logger, db *mongo.Database) ledger.ReportRepository {
	return &ReconciliationRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores a finished reconciliation report
func (r *ReconciliationRepository) Save(ctx context.Context, report *ledger.ReconciliationReport) error {
	if report.Discrepancies == nil {
		report.Discrepancies = []ledger.Discrepancy{}
	}

	_, err := r.db.Collection(ReconciliationCollectionName).InsertOne(ctx, report)
	if err != nil {
		r.logger.Error("Failed to save reconciliation report", "run_id", report.RunID, "error", err)
		return fmt.Errorf("failed to save reconciliation report: %w", err)
	}

	return nil
}

// Latest returns the most recent report, or nil when none has run yet
func (r *ReconciliationRepository) Latest(ctx context.Context) (*ledger.ReconciliationReport, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var report ledger.ReconciliationReport
	err := r.db.Collection(ReconciliationCollectionName).FindOne(ctx, bson.M{}, opts).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest reconciliation report", "error", err)
		return nil, fmt.Errorf("failed to get latest reconciliation report: %w", err)
	}

	return &report, nil
}
