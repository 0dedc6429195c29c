package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/payment"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PaymentRepository implements the payment.Repository interface for PostgreSQL
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment confirmation repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Save upserts a confirmation keyed by signature. A later, stronger commitment level replaces the stored status.
func (r *PaymentRepository) Save(ctx context.Context, c *payment.Confirmation) error {
	query := `
		INSERT INTO payment_confirmations (signature, status, user_id, slot, amount_lamports, from_wallet, to_wallet, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (signature) DO UPDATE SET status = EXCLUDED.status, slot = EXCLUDED.slot
	`

	_, err := r.querier.Exec(ctx, query,
		c.Signature,
		string(c.Status),
		c.UserID,
		int64(c.Slot),
		c.AmountLamports,
		c.FromWallet,
		c.ToWallet,
		c.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save payment confirmation", "signature", c.Signature, "error", err)
		return fmt.Errorf("failed to save payment confirmation: %w", err)
	}

	return nil
}

// GetBySignature retrieves a stored confirmation
func (r *PaymentRepository) GetBySignature(ctx context.Context, signature string) (*payment.Confirmation, error) {
	query := `
		SELECT signature, status, user_id, slot, amount_lamports, from_wallet, to_wallet, created_at
		FROM payment_confirmations
		WHERE signature = $1
	`

	var c payment.Confirmation
	var status string
	var slot int64
	err := r.querier.QueryRow(ctx, query, signature).Scan(
		&c.Signature,
		&status,
		&c.UserID,
		&slot,
		&c.AmountLamports,
		&c.FromWallet,
		&c.ToWallet,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrConfirmationNotFound{Signature: signature}
		}
		r.logger.Error("Failed to get payment confirmation", "signature", signature, "error", err)
		return nil, fmt.Errorf("failed to get payment confirmation: %w", err)
	}
	c.Status = payment.Status(status)
	c.Slot = uint64(slot)

	return &c, nil
}
