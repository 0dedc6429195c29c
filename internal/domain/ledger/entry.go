package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// Entry is the audit record of one committed investment. It travels through the outbox and
// Kafka and is projected into MongoDB.
type Entry struct {
	EventType          shared.EventType `json:"event_type" bson:"event_type"`
	InvestmentID       uuid.UUID        `json:"investment_id" bson:"investment_id"`
	ProjectID          int64            `json:"project_id" bson:"project_id"`
	UserID             string           `json:"user_id" bson:"user_id"`
	Amount             int64            `json:"amount" bson:"amount"` // Stored in cents/minor units
	PaymentReference   *string          `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	IdempotencyKey     string           `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID      string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ProjectRaisedAfter int64            `json:"project_raised_after" bson:"project_raised_after"`
	ProjectTarget      int64            `json:"project_target" bson:"project_target"`
	RecordedAt         time.Time        `json:"recorded_at" bson:"recorded_at"`
	ProjectedAt        *time.Time       `json:"projected_at,omitempty" bson:"projected_at,omitempty"`
}

var (
	ErrMissingInvestmentID = errors.New("ledger entry has no investment id")
	ErrMissingProjectID    = errors.New("ledger entry has no project id")
	ErrMissingUserID       = errors.New("ledger entry has no user id")
	ErrNonPositiveEntry    = errors.New("ledger entry amount must be positive")
	ErrEntryOverTarget     = errors.New("ledger entry raised total exceeds the project target")
)

// Validate checks the fields a consumer relies on before projecting an entry
func (e *Entry) Validate() error {
	switch {
	case e.InvestmentID == uuid.Nil:
		return ErrMissingInvestmentID
	case e.ProjectID <= 0:
		return ErrMissingProjectID
	case e.UserID == "":
		return ErrMissingUserID
	case e.Amount <= 0:
		return ErrNonPositiveEntry
	case e.ProjectRaisedAfter > e.ProjectTarget:
		return ErrEntryOverTarget
	}
	return nil
}
