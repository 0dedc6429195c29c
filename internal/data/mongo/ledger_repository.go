package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenova8-investment-ledger/internal/domain/ledger"
)

const (
	// LedgerCollectionName is the name of the investment audit trail collection in MongoDB
	LedgerCollectionName = "investment_ledger"
)

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

// EnsureIndexes creates the unique investment index that makes projection idempotent
// and the per-project index used by the audit trail listing
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(LedgerCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "investment_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_investment_id"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "recorded_at", Value: -1}},
			Options: options.Index().SetName("project_recorded_at"),
		},
	})
	if err != nil {
		r.logger.Error("Failed to create ledger indexes", "error", err)
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}

	return nil
}

// Create stores a projected entry.
// Returns ErrDuplicateEntry if the investment was already projected.
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	collection := r.db.Collection(LedgerCollectionName)

	if entry.ProjectedAt == nil {
		now := time.Now().UTC()
		entry.ProjectedAt = &now
	}

	_, err := collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicateEntry{InvestmentID: entry.InvestmentID}
		}
		r.logger.Error("Failed to create ledger entry",
			"investment_id", entry.InvestmentID.String(),
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByInvestmentID retrieves a projected entry by its investment ID.
// Returns ErrEntryNotFound if the investment has not been projected yet.
func (r *LedgerRepository) GetByInvestmentID(ctx context.Context, investmentID uuid.UUID) (*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"investment_id": investmentID}
	var entry ledger.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEntryNotFound{InvestmentID: investmentID}
		}
		r.logger.Error("Failed to get ledger entry",
			"investment_id", investmentID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}

// ListByProject retrieves paginated entries for a project, newest first
func (r *LedgerRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"project_id": projectID}
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get ledger entries",
			"project_id", projectID,
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*ledger.Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode ledger entries",
			"project_id", projectID,
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, nil
}

// CountByProject counts the projected entries of a project
func (r *LedgerRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"project_id": projectID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count ledger entries",
			"project_id", projectID,
			"error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}
