package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// Name of the UNIQUE (user_id, idempotency_key) constraint
const idempotencyConstraint = "investments_user_idempotency_key"

const investmentColumns = `i.id, i.user_id, i.project_id, i.amount, i.payment_reference,
			COALESCE(i.idempotency_key, ''), COALESCE(i.correlation_id, ''), i.created_at`

// InvestmentRepository implements the investment.Repository interface for PostgreSQL
type InvestmentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewInvestmentRepository creates a new PostgreSQL investment repository
func NewInvestmentRepository(logger *slog.Logger, db *persistence.PostgresDB) investment.Repository {
	return &InvestmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every statement inside tx
func (r *InvestmentRepository) WithTx(tx pgx.Tx) investment.Repository {
	return &InvestmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanInvestment(row rowScanner, extra ...interface{}) (*investment.Investment, error) {
	var inv investment.Investment
	dest := append([]interface{}{
		&inv.ID,
		&inv.UserID,
		&inv.ProjectID,
		&inv.Amount,
		&inv.PaymentReference,
		&inv.IdempotencyKey,
		&inv.CorrelationID,
		&inv.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &inv, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts an investment. A repeated (user, idempotency key) pair returns
// ErrDuplicateIdempotencyKey and aborts the surrounding transaction.
func (r *InvestmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	query := `
		INSERT INTO investments (id, user_id, project_id, amount, payment_reference, idempotency_key, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		inv.ID,
		inv.UserID,
		inv.ProjectID,
		inv.Amount,
		inv.PaymentReference,
		nullableString(inv.IdempotencyKey),
		nullableString(inv.CorrelationID),
		inv.CreatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, idempotencyConstraint) {
			return investment.ErrDuplicateIdempotencyKey{UserID: inv.UserID, Key: inv.IdempotencyKey}
		}
		r.logger.Error("Failed to create investment",
			"investment_id", inv.ID.String(),
			"project_id", inv.ProjectID,
			"error", err,
		)
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

// GetByIdempotencyKey returns the investment a user previously recorded under key, or nil
func (r *InvestmentRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*investment.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments i
		WHERE i.user_id = $1 AND i.idempotency_key = $2
	`

	inv, err := scanInvestment(r.querier.QueryRow(ctx, query, userID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get investment by idempotency key", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get investment by idempotency key: %w", err)
	}

	return inv, nil
}

// ListByUser returns a user's investments newest first with the project summary joined in
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	query := `
		SELECT ` + investmentColumns + `,
			p.id, p.name, p.status, p.target_amount, p.raised_amount
		FROM investments i
		JOIN projects p ON p.id = i.project_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`
	return r.listWithProject(ctx, query, userID)
}

// ListWithPaymentReference returns the user's investments that carry an on-chain payment reference
func (r *InvestmentRepository) ListWithPaymentReference(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	query := `
		SELECT ` + investmentColumns + `,
			p.id, p.name, p.status, p.target_amount, p.raised_amount
		FROM investments i
		JOIN projects p ON p.id = i.project_id
		WHERE i.user_id = $1 AND i.payment_reference IS NOT NULL
		ORDER BY i.created_at DESC, i.id DESC
	`
	return r.listWithProject(ctx, query, userID)
}

func (r *InvestmentRepository) listWithProject(ctx context.Context, query string, userID string) ([]*investment.WithProject, error) {
	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list user investments", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list user investments: %w", err)
	}
	defer rows.Close()

	result := make([]*investment.WithProject, 0)
	for rows.Next() {
		var summary investment.ProjectSummary
		inv, err := scanInvestment(rows,
			&summary.ID,
			&summary.Name,
			&summary.Status,
			&summary.TargetAmount,
			&summary.RaisedAmount,
		)
		if err != nil {
			r.logger.Error("Failed to scan investment", "error", err)
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		result = append(result, &investment.WithProject{Investment: inv, Project: summary})
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over investments", "error", err)
		return nil, fmt.Errorf("error iterating over investments: %w", err)
	}

	return result, nil
}

// ListByProject returns a project's investments newest first
func (r *InvestmentRepository) ListByProject(ctx context.Context, projectID int64) ([]*investment.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments i
		WHERE i.project_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`

	rows, err := r.querier.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to list project investments", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("failed to list project investments: %w", err)
	}
	defer rows.Close()

	result := make([]*investment.Investment, 0)
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			r.logger.Error("Failed to scan investment", "error", err)
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		result = append(result, inv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over investments", "error", err)
		return nil, fmt.Errorf("error iterating over investments: %w", err)
	}

	return result, nil
}
