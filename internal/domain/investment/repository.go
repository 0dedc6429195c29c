package investment

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines investment persistence operations. Investments are append-only.
type Repository interface {
	Create(ctx context.Context, inv *Investment) error

	// GetByIdempotencyKey returns nil, nil when the user never used the key
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*Investment, error)

	ListByUser(ctx context.Context, userID string) ([]*WithProject, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Investment, error)
	ListWithPaymentReference(ctx context.Context, userID string) ([]*WithProject, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrDuplicateIdempotencyKey indicates (user, key) uniqueness violation
type ErrDuplicateIdempotencyKey struct {
	UserID string
	Key    string
}

func (e ErrDuplicateIdempotencyKey) Error() string {
	return "duplicate idempotency key for user " + e.UserID + ": " + strconv.Quote(e.Key)
}

// Is matches any ErrDuplicateIdempotencyKey
func (e ErrDuplicateIdempotencyKey) Is(target error) bool {
	_, ok := target.(ErrDuplicateIdempotencyKey)
	return ok
}

// ErrInvestmentNotFound indicates missing investment
type ErrInvestmentNotFound struct {
	ID uuid.UUID
}

func (e ErrInvestmentNotFound) Error() string {
	return "investment not found: " + e.ID.String()
}
