package investment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyUserID       = errors.New("user id cannot be empty")
	ErrInvalidProjectID  = errors.New("project id must be greater than zero")
	ErrNonPositiveAmount = errors.New("investment amount must be greater than zero")
)

// Investment is an immutable record of money committed to a project
type Investment struct {
	ID               uuid.UUID `json:"id"`
	UserID           string    `json:"user_id"`
	ProjectID        int64     `json:"project_id"`
	Amount           int64     `json:"amount"` // Stored in cents/minor units
	PaymentReference *string   `json:"payment_reference,omitempty"`
	IdempotencyKey   string    `json:"idempotency_key,omitempty"`
	CorrelationID    string    `json:"correlation_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewInvestment builds a validated investment with a fresh ID
func NewInvestment(userID string, projectID int64, amount int64, paymentReference *string, idempotencyKey, correlationID string) (*Investment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if paymentReference != nil && strings.TrimSpace(*paymentReference) == "" {
		paymentReference = nil
	}

	return &Investment{
		ID:               uuid.New(),
		UserID:           userID,
		ProjectID:        projectID,
		Amount:           amount,
		PaymentReference: paymentReference,
		IdempotencyKey:   idempotencyKey,
		CorrelationID:    correlationID,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// SameRequest reports whether a replayed request targets the same project and amount
func (i *Investment) SameRequest(projectID int64, amount int64) bool {
	return i.ProjectID == projectID && i.Amount == amount
}

// ProjectSummary is the project data joined onto a user's investment listing
type ProjectSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	TargetAmount int64  `json:"target_amount"`
	RaisedAmount int64  `json:"raised_amount"`
}

// WithProject pairs an investment with its project summary
type WithProject struct {
	*Investment
	Project ProjectSummary `json:"project"`
}
