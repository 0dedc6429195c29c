package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages the projected audit trail with pagination support
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByInvestmentID(ctx context.Context, investmentID uuid.UUID) (*Entry, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*Entry, error)
	CountByProject(ctx context.Context, projectID int64) (int64, error)
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	InvestmentID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.InvestmentID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	// If the target InvestmentID is empty, consider it a match for any ErrEntryNotFound
	if t.InvestmentID == uuid.Nil {
		return true
	}
	return e.InvestmentID == t.InvestmentID
}

// ErrDuplicateEntry indicates the investment was already projected
type ErrDuplicateEntry struct {
	InvestmentID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.InvestmentID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.InvestmentID == uuid.Nil {
		return true
	}
	return e.InvestmentID == t.InvestmentID
}
