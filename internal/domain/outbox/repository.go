package outbox

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Repository stores recorded-investment events until the worker has published them.
// Create is only meaningful on a repository bound with WithTx to the investment's transaction.
type Repository interface {
	// Create returns ErrDuplicateMessage when the investment already has a message
	Create(ctx context.Context, message *Message) error
	// GetPending returns up to limit PENDING messages, oldest first
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound indicates missing outbox message
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateMessage means the investment's event was already written
type ErrDuplicateMessage struct {
	InvestmentID uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	return "duplicate outbox message: " + e.InvestmentID.String()
}
